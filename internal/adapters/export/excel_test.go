package export_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/okian/hireflow/internal/adapters/export"
	"github.com/okian/hireflow/internal/domain/model"
	"github.com/okian/hireflow/internal/domain/report"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWriteFunnel(t *testing.T) {
	Convey("Given a funnel with scored rows", t, func() {
		score := 9.2
		f := report.Funnel{
			JobID:           "job-1",
			TotalApplicants: 3,
			Unrecognized:    1,
			Interviews:      1,
			InterviewRate:   50,
			Rows: []report.Row{
				{CandidateID: "c1", Name: "Ada", Stage: model.InterviewScheduled, Score: &score, Level: "Excellent"},
				{CandidateID: "c2", Name: "Bo", Stage: model.Applied},
				{CandidateID: "c3", Name: "Cy", UnknownStatus: "Offer Declined"},
			},
			Missing: []string{model.SourceOffers},
		}

		Convey("When it is written", func() {
			var buf bytes.Buffer
			err := export.WriteFunnel(&buf, f, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
			So(err, ShouldBeNil)

			x, err := excelize.OpenReader(&buf)
			So(err, ShouldBeNil)
			defer x.Close()

			Convey("Then the summary carries the counts", func() {
				So(x.GetSheetList(), ShouldResemble, []string{export.SummarySheet, export.CandidatesSheet})
				v, _ := x.GetCellValue(export.SummarySheet, "B3")
				So(v, ShouldEqual, "job-1")
				v, _ = x.GetCellValue(export.SummarySheet, "A5")
				So(v, ShouldEqual, "Applicants")
				v, _ = x.GetCellValue(export.SummarySheet, "B5")
				So(v, ShouldEqual, "3")
				v, _ = x.GetCellValue(export.SummarySheet, "B11")
				So(v, ShouldEqual, "50")
				v, _ = x.GetCellValue(export.SummarySheet, "A14")
				So(v, ShouldEqual, "Unrecognized status")
				v, _ = x.GetCellValue(export.SummarySheet, "B14")
				So(v, ShouldEqual, "1")
			})

			Convey("Then each candidate has a row", func() {
				rows, err := x.GetRows(export.CandidatesSheet)
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 4)
				So(rows[1][0], ShouldEqual, "c1")
				So(rows[1][3], ShouldEqual, "interview_scheduled")
				So(rows[1][4], ShouldEqual, "9.2")
				So(rows[2][4], ShouldEqual, "n/a")
				So(rows[3][3], ShouldEqual, "unrecognized: Offer Declined")
			})
		})
	})
}
