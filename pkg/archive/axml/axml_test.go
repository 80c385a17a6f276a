package axml_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/flier/archiver/pkg/archive/axml"
)

func TestNodeRoundTrip(t *testing.T) {
	Convey("Given a Node tree with a scalar child and a class attribute", t, func() {
		n := axml.New()
		So(n.PushClassName("Header"), ShouldBeNil)

		child, err := n.Child("SentBy")
		So(err, ShouldBeNil)
		So(child.Push("alice"), ShouldBeNil)

		Convey("WriteXML renders it as a tagged element tree", func() {
			b, err := n.WriteXML(axml.WithRootTag("header"))
			So(err, ShouldBeNil)
			So(string(b), ShouldContainSubstring, `<header class="Header">`)
			So(string(b), ShouldContainSubstring, `<SentBy>alice</SentBy>`)
		})

		Convey("Parsing that text back reproduces the class and child", func() {
			b, err := n.WriteXML(axml.WithRootTag("header"))
			So(err, ShouldBeNil)

			parsed, err := axml.Parse(b)
			So(err, ShouldBeNil)

			class, err := parsed.PopClassName()
			So(err, ShouldBeNil)
			So(class, ShouldEqual, "Header")

			c, err := parsed.Child("SentBy")
			So(err, ShouldBeNil)

			var sentBy string
			So(c.Pop(&sentBy), ShouldBeNil)
			So(sentBy, ShouldEqual, "alice")
		})
	})

	Convey("Given a Node resized to hold a declared number of positional children", t, func() {
		n := axml.New()
		So(n.Resize(3), ShouldBeNil)

		for i := 0; i < 3; i++ {
			c, err := n.ChildAt(i)
			So(err, ShouldBeNil)
			So(c.Push(int64(i)), ShouldBeNil)
		}

		Convey("Size reports the declared count", func() {
			size, err := n.Size()
			So(err, ShouldBeNil)
			So(size, ShouldEqual, 3)
		})

		Convey("Round-tripping through XML text preserves position order", func() {
			b, err := n.WriteXML()
			So(err, ShouldBeNil)

			parsed, err := axml.Parse(b)
			So(err, ShouldBeNil)

			size, err := parsed.Size()
			So(err, ShouldBeNil)
			So(size, ShouldEqual, 3)

			for i := 0; i < 3; i++ {
				c, err := parsed.ChildAt(i)
				So(err, ShouldBeNil)

				var v int64
				So(c.Pop(&v), ShouldBeNil)
				So(v, ShouldEqual, int64(i))
			}
		})
	})

	Convey("Given a parsed element whose size attribute exceeds its actual children", t, func() {
		n, err := axml.Parse([]byte(`<value size="5"><item>0</item></value>`))
		So(err, ShouldBeNil)

		Convey("Size reports SizeMismatch", func() {
			_, err := n.Size()
			So(err, ShouldNotBeNil)
		})
	})
}
