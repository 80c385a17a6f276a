package desc_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/flier/archiver/pkg/desc"
)

type base struct {
	ID string
}

type derived struct {
	base
	Name string
}

type tagged struct {
	Visible string
	Hidden  string `archive:"-"`
	Renamed string `archive:"other_name"`
}

func names(d *desc.Descriptor) []string {
	out := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		out[i] = f.Name
	}

	return out
}

func TestDescriptorInheritance(t *testing.T) {
	Convey("Given a type that embeds a parent struct as its first field", t, func() {
		d := desc.Of[derived]()

		Convey("Its descriptor concatenates the parent's fields, then its own, in source order", func() {
			So(names(d), ShouldResemble, []string{"ID", "Name"})
		})
	})
}

func TestDescriptorTags(t *testing.T) {
	Convey("Given a type with archive struct tags", t, func() {
		d := desc.Of[tagged]()

		Convey("A `-` tag drops the field", func() {
			So(names(d), ShouldNotContain, "Hidden")
		})

		Convey("A named tag renames the field", func() {
			So(names(d), ShouldContain, "other_name")
			So(names(d), ShouldNotContain, "Renamed")
		})
	})
}

func TestDescriptorMemoized(t *testing.T) {
	Convey("Of should memoize by type", t, func() {
		a := desc.Of[derived]()
		b := desc.Of[derived]()
		So(a, ShouldEqual, b)
	})
}
