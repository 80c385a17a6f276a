package ajson_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/flier/archiver/pkg/archive/ajson"
)

func TestNodeRoundTrip(t *testing.T) {
	Convey("Given a Node with an ordered object", t, func() {
		n := ajson.New()

		child, err := n.Child("b")
		So(err, ShouldBeNil)
		So(child.Push("second"), ShouldBeNil)

		first, err := n.Child("a")
		So(err, ShouldBeNil)
		So(first.Push("first"), ShouldBeNil)

		Convey("Marshaling preserves insertion order, not lexical order", func() {
			b, err := n.MarshalJSON()
			So(err, ShouldBeNil)
			So(string(b), ShouldEqual, `{"b":"second","a":"first"}`)
		})
	})

	Convey("Given JSON text with out-of-order keys", t, func() {
		n, err := ajson.Parse([]byte(`{"z":1,"a":2}`))
		So(err, ShouldBeNil)

		Convey("Re-marshaling reproduces the original member order", func() {
			b, err := n.MarshalJSON()
			So(err, ShouldBeNil)
			So(string(b), ShouldEqual, `{"z":1,"a":2}`)
		})
	})

	Convey("Given an array Node", t, func() {
		n := ajson.New()
		So(n.Resize(3), ShouldBeNil)

		size, err := n.Size()
		So(err, ShouldBeNil)
		So(size, ShouldEqual, 3)

		for i := 0; i < 3; i++ {
			c, err := n.ChildAt(i)
			So(err, ShouldBeNil)
			So(c.Push(int64(i)), ShouldBeNil)
		}

		Convey("It marshals as a JSON array in position order", func() {
			b, err := n.MarshalJSON()
			So(err, ShouldBeNil)
			So(string(b), ShouldEqual, `[0,1,2]`)
		})
	})

	Convey("Given a scalar leaf Node", t, func() {
		n := ajson.New()
		So(n.Push(int64(42)), ShouldBeNil)

		Convey("Pop reads it back into a matching Go type", func() {
			var out int64
			So(n.Pop(&out), ShouldBeNil)
			So(out, ShouldEqual, 42)
		})

		Convey("Popping before any Push fails with MissingField", func() {
			empty := ajson.New()
			var out int64
			So(empty.Pop(&out), ShouldNotBeNil)
		})
	})

	Convey("Given a class and index attribute", t, func() {
		n := ajson.New()
		So(n.PushClassName("Dog"), ShouldBeNil)
		So(n.PushIndex("tag", 2), ShouldBeNil)

		Convey("They are readable back", func() {
			name, err := n.PopClassName()
			So(err, ShouldBeNil)
			So(name, ShouldEqual, "Dog")

			idx, err := n.PopIndex("tag")
			So(err, ShouldBeNil)
			So(idx, ShouldEqual, 2)
		})
	})
}
