package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/lojista/internal/domain/dedupe"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new deduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper()
		So(d.Size(), ShouldEqual, 0)

		Convey("A new key is recorded", func() {
			So(d.SeenAndRecord(ctx, "k1"), ShouldBeFalse)
			So(d.Size(), ShouldEqual, 1)

			Convey("And a replay is reported as seen", func() {
				So(d.SeenAndRecord(ctx, "k1"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And unrecording lets it through again", func() {
				d.Unrecord(ctx, "k1")
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "k1"), ShouldBeFalse)
			})
		})

		Convey("Unrecording an unknown key changes nothing", func() {
			d.SeenAndRecord(ctx, "k1")
			d.Unrecord(ctx, "other")
			So(d.Size(), ShouldEqual, 1)
		})
	})

	Convey("Given a deduper bounded to three keys", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
		for _, k := range []string{"a", "b", "c"} {
			d.SeenAndRecord(ctx, k)
		}

		Convey("When a fourth key arrives the oldest is evicted", func() {
			So(d.SeenAndRecord(ctx, "d"), ShouldBeFalse)
			So(d.Size(), ShouldEqual, 3)
			So(d.SeenAndRecord(ctx, "b"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "c"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "d"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "a"), ShouldBeFalse)
		})

		Convey("When a middle key is unrecorded eviction order holds", func() {
			d.Unrecord(ctx, "b")
			d.SeenAndRecord(ctx, "d")
			d.SeenAndRecord(ctx, "e")
			So(d.Size(), ShouldEqual, 3)
			So(d.SeenAndRecord(ctx, "c"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "a"), ShouldBeFalse)
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))

		Convey("Nothing is evicted", func() {
			for i := 0; i < 20_000; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("k%d", i))
			}
			So(d.Size(), ShouldEqual, 20_000)
			So(d.SeenAndRecord(ctx, "k0"), ShouldBeTrue)
		})
	})
}

func TestInMemoryDeduperConcurrency(t *testing.T) {
	Convey("Given many goroutines racing on the same keys", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper()

		var (
			wg    sync.WaitGroup
			mu    sync.Mutex
			first = map[string]int{}
		)
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 100; i++ {
					k := fmt.Sprintf("k%d", i)
					if !d.SeenAndRecord(ctx, k) {
						mu.Lock()
						first[k]++
						mu.Unlock()
					}
				}
			}()
		}
		wg.Wait()

		Convey("Each key is recorded exactly once", func() {
			So(d.Size(), ShouldEqual, 100)
			So(first, ShouldHaveLength, 100)
			for _, n := range first {
				So(n, ShouldEqual, 1)
			}
		})
	})
}
