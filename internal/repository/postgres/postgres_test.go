package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/arbeit/talentportal/internal/domain"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

var ts = time.Date(2025, 4, 2, 9, 30, 0, 0, time.UTC)

func TestUserCreateDuplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db, nil)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("client@acme.com", "Client", "client_user", "client_001", "hash", ts, ts).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &domain.User{
		Email: "client@acme.com", Name: "Client", Role: domain.RoleClientUser, ClientID: "client_001",
		PasswordHash: "hash", CreatedAt: ts, UpdatedAt: ts,
	})
	if !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestUserGetByEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db, nil)

	rows := sqlmock.NewRows([]string{"email", "name", "role", "client_id", "password_hash", "created_at", "updated_at"}).
		AddRow("recruiter@arbeit.com", "Recruiter", "recruiter", nil, "hash", ts, ts)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).WithArgs("recruiter@arbeit.com").WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).WithArgs("ghost@arbeit.com").WillReturnError(sql.ErrNoRows)

	u, err := repo.GetByEmail(context.Background(), "recruiter@arbeit.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u.Role != domain.RoleRecruiter || u.ClientID != "" {
		t.Fatalf("unexpected user %+v", u)
	}

	if _, err := repo.GetByEmail(context.Background(), "ghost@arbeit.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClientUpdateNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewClientRepository(db, nil)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE clients")).
		WithArgs("Acme", "inactive", ts, "client_missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &domain.Client{ClientID: "client_missing", CompanyName: "Acme", Status: "inactive", UpdatedAt: ts})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClientListEscapesSearch(t *testing.T) {
	db, mock := newMock(t)
	repo := NewClientRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE company_name ILIKE $1 ORDER BY created_at, client_id LIMIT $2")).
		WithArgs(`%50\% off%`, 100).
		WillReturnRows(sqlmock.NewRows([]string{"client_id", "company_name", "status", "created_at", "created_by", "updated_at"}).
			AddRow("client_1", "50% Off Ltd", "active", ts, "admin@arbeit.com", ts))

	got, err := repo.List(context.Background(), domain.ClientFilter{Search: "50% off", Limit: 100})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].CompanyName != "50% Off Ltd" {
		t.Fatalf("unexpected clients %+v", got)
	}
}

func jobRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"job_id", "client_id", "title", "location", "employment_type", "experience_range", "salary_range",
		"work_model", "required_skills", "description", "status", "created_at", "created_by", "updated_at",
	})
}

func TestJobScanDecodesJSONAndArrays(t *testing.T) {
	db, mock := newMock(t)
	repo := NewJobRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("FROM jobs WHERE job_id = $1")).WithArgs("job_1").
		WillReturnRows(jobRow().AddRow(
			"job_1", "client_001", "Go Engineer", "Berlin", "Full-time",
			[]byte(`{"min_years":3,"max_years":6}`), []byte(`{"min_amount":70000,"max_amount":90000,"currency":"EUR"}`),
			"Hybrid", "{Go,PostgreSQL}", "Build APIs", "Active", ts, "recruiter@arbeit.com", ts,
		))

	j, err := repo.GetByID(context.Background(), "job_1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if j.ExperienceRange.MinYears != 3 || j.ExperienceRange.MaxYears != 6 {
		t.Fatalf("experience not decoded: %+v", j.ExperienceRange)
	}
	if j.SalaryRange == nil || j.SalaryRange.Currency != "EUR" {
		t.Fatalf("salary not decoded: %+v", j.SalaryRange)
	}
	if len(j.RequiredSkills) != 2 || j.RequiredSkills[1] != "PostgreSQL" {
		t.Fatalf("skills not decoded: %v", j.RequiredSkills)
	}
}

func TestJobListBuildsFilters(t *testing.T) {
	db, mock := newMock(t)
	repo := NewJobRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE client_id = $1 AND status = $2 AND (title ILIKE $3 OR EXISTS (SELECT 1 FROM unnest(required_skills) AS s WHERE s ILIKE $3)) ORDER BY created_at DESC, job_id LIMIT $4 OFFSET $5")).
		WithArgs("client_001", "Active", "%go%", 10, 20).
		WillReturnRows(jobRow())

	got, err := repo.List(context.Background(), domain.JobFilter{ClientID: "client_001", Status: "Active", Search: "go", Skip: 20, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty slice, got %#v", got)
	}
}

func TestCandidateRoundTripColumns(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCandidateRepository(db, nil)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO candidates")).
		WithArgs(
			"cand_1", "job_1", "Ada", "Engineer", "ada@example.com", "", "", sqlmock.AnyArg(),
			[]byte(`[]`), []byte(`[]`), "", sqlmock.AnyArg(), "cv", "cv", "NEW", nil,
			ts, "recruiter@arbeit.com", ts,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), &domain.Candidate{
		CandidateID: "cand_1", JobID: "job_1", Name: "Ada", CurrentRole: "Engineer", Email: "ada@example.com",
		CVTextOriginal: "cv", CVTextRedacted: "cv", Status: "NEW", CreatedAt: ts, CreatedBy: "recruiter@arbeit.com", UpdatedAt: ts,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	cols := []string{
		"candidate_id", "job_id", "name", "current_position", "email", "phone", "linkedin", "skills",
		"experience", "education", "summary", "cv_file_url", "cv_text_original", "cv_text_redacted", "status", "ai_story",
		"created_at", "created_by", "updated_at",
	}
	mock.ExpectQuery(regexp.QuoteMeta("FROM candidates WHERE job_id = $1")).WithArgs("job_1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			"cand_1", "job_1", "Ada", "Engineer", "ada@example.com", "", "", "{Go}",
			[]byte(`[{"company":"Acme","role":"Dev","duration":"2020-2023","achievements":["Shipped"]}]`), []byte(`[]`),
			"", "/api/uploads/cand_1.pdf", "cv", "cv", "NEW",
			[]byte(`{"headline":"Builder","summary":"s","timeline":[],"skills":["Go"],"fit_score":88,"highlights":[]}`),
			ts, "recruiter@arbeit.com", ts,
		))

	list, err := repo.ListByJob(context.Background(), "job_1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one candidate, got %d", len(list))
	}
	c := list[0]
	if c.CVFileURL != "/api/uploads/cand_1.pdf" || c.AIStory == nil || c.AIStory.FitScore != 88 {
		t.Fatalf("unexpected candidate %+v", c)
	}
	if len(c.Experience) != 1 || c.Experience[0].Achievements[0] != "Shipped" {
		t.Fatalf("experience not decoded: %+v", c.Experience)
	}
}

func TestReviewListMapsEnums(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReviewRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("FROM reviews")).WithArgs("cand_1").
		WillReturnRows(sqlmock.NewRows([]string{"review_id", "candidate_id", "user_id", "user_name", "user_role", "action", "comment", "timestamp"}).
			AddRow("rev_2", "cand_1", "client@acme.com", "Client", "client_user", "APPROVE", "strong", ts.Add(time.Minute)).
			AddRow("rev_1", "cand_1", "recruiter@arbeit.com", "Recruiter", "recruiter", "COMMENT", "call", ts))

	got, err := repo.ListByCandidate(context.Background(), "cand_1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].Action != domain.ActionApprove || got[1].UserRole != domain.RoleRecruiter {
		t.Fatalf("unexpected reviews %+v", got)
	}
}

func candidateAccountRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"account_id", "email", "name", "phone", "linkedin_url", "current_company", "experience_years",
		"password_hash", "must_change_password", "status", "created_at", "created_by", "updated_at", "last_login_at",
	})
}

func TestCandidateAccountListScansNullableColumns(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCandidateAccountRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE TRUE AND status = $1 AND (name ILIKE $2 OR email ILIKE $2) ORDER BY created_at DESC, account_id LIMIT $3")).
		WithArgs("active", "%ana%", 20).
		WillReturnRows(candidateAccountRow().
			AddRow("cand_1", "ana@example.com", "Ana", "", "", "Globex", int64(5), "hash", true, "active", ts, "self", ts, ts).
			AddRow("cand_2", "hana@example.com", "Hana", "", "", "", nil, "hash", false, "active", ts, "recruiter@arbeit.com", ts, nil))

	got, err := repo.List(context.Background(), domain.CandidateAccountFilter{Status: "active", Search: "ana", Limit: 20})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(got))
	}
	if got[0].ExperienceYears == nil || *got[0].ExperienceYears != 5 || !got[0].MustChangePassword || got[0].LastLoginAt == nil {
		t.Fatalf("unexpected first account %+v", got[0])
	}
	if got[1].ExperienceYears != nil || got[1].LastLoginAt != nil {
		t.Fatalf("NULL columns should stay nil, got %+v", got[1])
	}
}

func TestCandidateAccountGetByEmailIgnoresCase(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCandidateAccountRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE LOWER(email) = LOWER($1)")).
		WithArgs("GHOST@example.com").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetByEmail(context.Background(), "GHOST@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
