package repository_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/okian/hireflow/internal/adapters/repository"
	"github.com/okian/hireflow/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// exerciseStore runs the Store contract against s.
func exerciseStore(s repository.Store) {
	ctx := context.Background()

	Convey("When a candidate is stored", func() {
		c := model.Candidate{
			ID: "cand-1", Name: "Ada", JobID: "job-1", Stage: model.InterviewScheduled,
			Interview: &model.Interview{ID: "iv-1", Date: "2025-03-01", Time: "10:00"},
		}
		So(s.Put(ctx, c), ShouldBeNil)

		Convey("Then it can be read back", func() {
			got, err := s.Get(ctx, "cand-1")
			So(err, ShouldBeNil)
			So(got, ShouldResemble, c)

			n, err := s.Count(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldBeGreaterThanOrEqualTo, 1)
		})

		Convey("Then a later Put replaces it", func() {
			c.Stage = model.InterviewCompleted
			So(s.Put(ctx, c), ShouldBeNil)
			got, err := s.Get(ctx, "cand-1")
			So(err, ShouldBeNil)
			So(got.Stage, ShouldEqual, model.InterviewCompleted)
		})

		Convey("Then deleting it makes it unknown", func() {
			So(s.Delete(ctx, "cand-1"), ShouldBeNil)
			_, err := s.Get(ctx, "cand-1")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
		})
	})

	Convey("When reading an unknown candidate", func() {
		_, err := s.Get(ctx, "nobody")

		Convey("Then it is not found", func() {
			So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
		})
	})

	Convey("When storing a candidate without id", func() {
		err := s.Put(ctx, model.Candidate{Name: "anon"})

		Convey("Then it is refused", func() {
			So(errors.Is(err, repository.ErrInvalidID), ShouldBeTrue)
		})
	})
}

func TestMemoryStore(t *testing.T) {
	Convey("Given a memory store", t, func() {
		exerciseStore(repository.NewMemoryStore())
	})

	Convey("Given a memory store with a TTL", t, func() {
		now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
		s := repository.NewMemoryStore(
			repository.WithTTL(time.Minute),
			repository.WithClock(func() time.Time { return now }),
		)
		ctx := context.Background()
		So(s.Put(ctx, model.Candidate{ID: "cand-1"}), ShouldBeNil)

		Convey("When the TTL passes", func() {
			now = now.Add(time.Minute)

			Convey("Then the entry is gone", func() {
				_, err := s.Get(ctx, "cand-1")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				n, _ := s.Count(ctx)
				So(n, ShouldEqual, 0)
			})
		})
	})

	Convey("Given a stored candidate with an interview", t, func() {
		s := repository.NewMemoryStore()
		ctx := context.Background()
		c := model.Candidate{ID: "cand-1", Interview: &model.Interview{ID: "iv-1", Date: "2025-03-01"}}
		So(s.Put(ctx, c), ShouldBeNil)

		Convey("When the caller mutates its copy", func() {
			c.Interview.Date = "2030-01-01"

			Convey("Then the stored value is unaffected", func() {
				got, _ := s.Get(ctx, "cand-1")
				So(got.Interview.Date, ShouldEqual, "2025-03-01")
			})
		})
	})
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("HIREFLOW_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("HIREFLOW_TEST_REDIS_ADDR not set")
	}

	Convey("Given a redis store", t, func() {
		client, err := repository.DialRedis(context.Background(), addr, "", 0)
		So(err, ShouldBeNil)
		defer func() { _ = client.Close() }()

		prefix := "hireflow-test:" + time.Now().Format("150405.000000") + ":"
		exerciseStore(repository.NewRedisStore(client, repository.WithKeyPrefix(prefix), repository.WithTTL(time.Minute)))
	})
}
