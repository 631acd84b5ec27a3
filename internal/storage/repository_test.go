package storage

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/guttosm/tradesummary/internal/domain/models"
)

type dummyErr struct{}

func (dummyErr) Error() string { return "dummy" }

const runID = "7f0c2a52-9b7e-4c43-a1bc-4b2f3f0e9d11"

var summaryColumns = []string{"symbol", "max_gap", "volume", "weighted_average_price", "max_price"}

func newMockRepo(t *testing.T) (*summaryRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	repo := &summaryRepository{db: db}
	cleanup := func() { _ = db.Close() }
	return repo, mock, cleanup
}

func TestGetSummaryBySymbol_SQLMock(t *testing.T) {
	query := regexp.QuoteMeta("FROM symbol_summaries s JOIN summary_runs r ON r.run_id = s.run_id WHERE s.symbol = $1")

	cases := []struct {
		name    string
		rows    *sqlmock.Rows
		err     error
		want    *models.Summary
		wantErr bool
	}{
		{
			name: "found",
			rows: sqlmock.NewRows(summaryColumns).AddRow("aaa", 3, 3, 1, 3),
			want: &models.Summary{Symbol: "aaa", MaxGap: 3, Volume: 3, WeightedAveragePrice: 1, MaxPrice: 3},
		},
		{
			name: "not found",
			rows: sqlmock.NewRows(summaryColumns),
			want: nil,
		},
		{
			name:    "db error",
			err:     dummyErr{},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock, done := newMockRepo(t)
			defer done()

			exp := mock.ExpectQuery(query).WithArgs("aaa")
			if tc.err != nil {
				exp.WillReturnError(tc.err)
			} else {
				exp.WillReturnRows(tc.rows)
			}

			out, err := repo.GetSummaryBySymbol("aaa")
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if (out == nil) != (tc.want == nil) || (out != nil && *out != *tc.want) {
				t.Fatalf("got %+v want %+v", out, tc.want)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestListSummaries_SQLMock(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY s.symbol COLLATE "C"`)).
		WillReturnRows(sqlmock.NewRows(summaryColumns).
			AddRow("aaa", 3, 3, 1, 3).
			AddRow("bbb", 0, 2, 2, 2))

	out, err := repo.ListSummaries()
	if err != nil {
		t.Fatalf("ListSummaries: %v", err)
	}
	if len(out) != 2 || out[0].Symbol != "aaa" || out[1].WeightedAveragePrice != 2 {
		t.Fatalf("unexpected rows: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListSummaries_Empty(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows(summaryColumns))
	out, err := repo.ListSummaries()
	if err != nil || out == nil || len(out) != 0 {
		t.Fatalf("want empty non-nil slice, got %+v err=%v", out, err)
	}
}

func TestListSummaries_QueryError(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	mock.ExpectQuery("SELECT").WillReturnError(dummyErr{})
	if _, err := repo.ListSummaries(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestHasRunForSource_SQLMock(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM summary_runs WHERE source = $1)")).
		WithArgs("input.csv").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	ok, err := repo.HasRunForSource("input.csv")
	if err != nil || !ok {
		t.Fatalf("HasRunForSource: ok=%v err=%v", ok, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// expectCopy registers one pq.CopyIn statement with n row execs plus the flush.
func expectCopy(mock sqlmock.Sqlmock, n int) {
	// pq.CopyIn is driver specific; sqlmock sees it as a prepared statement
	// executed once per row plus a final flushing Exec().
	prep := mock.ExpectPrepare(".*")
	for range n {
		prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
}

func TestWriteRun_ReplaceCommitsTogether(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM symbol_summaries").WithArgs("input.csv").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM summary_runs WHERE source = $1")).
		WithArgs("input.csv").WillReturnResult(sqlmock.NewResult(0, 1))
	expectCopy(mock, 2)
	mock.ExpectExec("INSERT INTO summary_runs").
		WithArgs(runID, "input.csv", 4, 2).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	rows := []models.Summary{
		{Symbol: "aaa", MaxGap: 3, Volume: 3, WeightedAveragePrice: 1, MaxPrice: 3},
		{Symbol: "bbb", MaxGap: 0, Volume: 2, WeightedAveragePrice: 2, MaxPrice: 2},
	}
	err := repo.WriteRun(func(w RunWriter) error {
		if err := w.DeleteRunBySource("input.csv"); err != nil {
			return err
		}
		if err := w.InsertSummariesBatch(runID, rows); err != nil {
			return err
		}
		return w.UpsertRunLog(runID, "input.csv", 4, 2)
	})
	if err != nil {
		t.Fatalf("WriteRun: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWriteRun_FailureRollsBackDelete(t *testing.T) {
	cases := []struct {
		name  string
		setup func(mock sqlmock.Sqlmock)
	}{
		{
			name: "delete",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("DELETE FROM symbol_summaries").WillReturnError(dummyErr{})
			},
		},
		{
			name: "row exec after delete",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("DELETE FROM symbol_summaries").WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectExec("DELETE FROM summary_runs").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectPrepare(".*").ExpectExec().WillReturnError(dummyErr{})
			},
		},
		{
			name: "flush after delete",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("DELETE FROM symbol_summaries").WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectExec("DELETE FROM summary_runs").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectPrepare(".*").ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(".*").WillReturnError(dummyErr{})
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock, done := newMockRepo(t)
			defer done()

			mock.ExpectBegin()
			tc.setup(mock)
			mock.ExpectRollback()

			err := repo.WriteRun(func(w RunWriter) error {
				if err := w.DeleteRunBySource("input.csv"); err != nil {
					return err
				}
				return w.InsertSummariesBatch(runID, []models.Summary{{Symbol: "X"}})
			})
			if err == nil {
				t.Fatalf("expected error on %s", tc.name)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("expected rollback, no commit: %v", err)
			}
		})
	}
}

func TestWriteRun_BeginError(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	mock.ExpectBegin().WillReturnError(dummyErr{})
	called := false
	if err := repo.WriteRun(func(RunWriter) error { called = true; return nil }); err == nil || called {
		t.Fatalf("expected begin error without calling fn, err=%v called=%v", err, called)
	}
}

func TestWriteRun_MultipleBatches(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	mock.ExpectBegin()
	expectCopy(mock, 1)
	expectCopy(mock, 1)
	mock.ExpectCommit()

	err := repo.WriteRun(func(w RunWriter) error {
		if err := w.InsertSummariesBatch(runID, []models.Summary{{Symbol: "aaa"}}); err != nil {
			return err
		}
		// empty batches never reach the db
		if err := w.InsertSummariesBatch(runID, nil); err != nil {
			return err
		}
		return w.InsertSummariesBatch(runID, []models.Summary{{Symbol: "bbb"}})
	})
	if err != nil {
		t.Fatalf("WriteRun: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestNewSummaryRepository_Construct(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer func() { _ = db.Close() }()
	if r := NewSummaryRepository(db); r == nil {
		t.Fatalf("expected non-nil repository")
	}
}
