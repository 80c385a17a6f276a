package xunsafe_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/flier/archiver/pkg/xunsafe"
)

func TestAddSub(t *testing.T) {
	Convey("Given a backing byte array", t, func() {
		buf := []byte("hello, world")
		src := &buf[0]

		Convey("Add should move the pointer forward by n bytes", func() {
			p := xunsafe.Add(src, 7)
			So(*p, ShouldEqual, byte('w'))
		})

		Convey("Sub should recover the offset between two pointers into the same array", func() {
			p := xunsafe.Add(src, 7)
			So(xunsafe.Sub(p, src), ShouldEqual, 7)
		})

		Convey("NoEscape should return an equal pointer", func() {
			p := xunsafe.NoEscape(src)
			So(p, ShouldEqual, src)
		})
	})
}
