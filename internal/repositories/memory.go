package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"alfredoptarigan/resume-analyzer/internal/models"
)

// MemoryStore backs the in-memory repositories used when DB_DRIVER=memory
// and by tests. All three repositories share one lock; ids are per table.
type MemoryStore struct {
	mu       sync.Mutex
	users    map[uint]models.User
	analyses map[uint]models.ResumeAnalysis
	reports  map[uint]models.InterviewReport
	seq      map[string]uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[uint]models.User),
		analyses: make(map[uint]models.ResumeAnalysis),
		reports:  make(map[uint]models.InterviewReport),
		seq:      make(map[string]uint),
	}
}

func (s *MemoryStore) id(table string) uint {
	s.seq[table]++
	return s.seq[table]
}

func (s *MemoryStore) Users() UserRepository { return &memoryUserRepo{s} }
func (s *MemoryStore) Analyses() ResumeAnalysisRepository { return &memoryAnalysisRepo{s} }
func (s *MemoryStore) Reports() ReportRepository { return &memoryReportRepo{s} }

type memoryUserRepo struct{ s *MemoryStore }

func (r *memoryUserRepo) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return ErrDuplicate
		}
	}
	now := time.Now()
	user.ID = r.s.id("users")
	user.CreatedAt, user.UpdatedAt = now, now
	r.s.users[user.ID] = cloneUser(*user)
	return nil
}

func (r *memoryUserRepo) FindByID(_ context.Context, id uint) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

func (r *memoryUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username })
}

func (r *memoryUserRepo) FindByIdentifier(_ context.Context, identifier string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == identifier || u.Email == identifier })
}

func (r *memoryUserRepo) find(match func(models.User) bool) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if match(u) {
			out := cloneUser(u)
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryUserRepo) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryUserRepo) ActivateSubscription(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.IsSubscribed = true
	u.RemainingAttempts = nil
	u.UpdatedAt = time.Now()
	r.s.users[id] = u
	return nil
}

func (r *memoryUserRepo) DecrementAttempts(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok || u.IsSubscribed || u.RemainingAttempts == nil || *u.RemainingAttempts <= 0 {
		return ErrNoAttemptsLeft
	}
	left := *u.RemainingAttempts - 1
	u.RemainingAttempts = &left
	u.UpdatedAt = time.Now()
	r.s.users[id] = u
	return nil
}

func cloneUser(u models.User) models.User {
	if u.RemainingAttempts != nil {
		n := *u.RemainingAttempts
		u.RemainingAttempts = &n
	}
	return u
}

type memoryAnalysisRepo struct{ s *MemoryStore }

func (r *memoryAnalysisRepo) Create(_ context.Context, analysis *models.ResumeAnalysis) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.analyses {
		if a.StoredFilename == analysis.StoredFilename {
			return ErrDuplicate
		}
	}
	analysis.ID = r.s.id("resume_analyses")
	analysis.CreatedAt = time.Now()
	r.s.analyses[analysis.ID] = *analysis
	return nil
}

func (r *memoryAnalysisRepo) FindByID(_ context.Context, id uint) (*models.ResumeAnalysis, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.analyses[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (r *memoryAnalysisRepo) FindByIDs(_ context.Context, ids []uint) ([]models.ResumeAnalysis, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.ResumeAnalysis
	for _, id := range ids {
		if a, ok := r.s.analyses[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memoryAnalysisRepo) FindUnindexed(_ context.Context, dueBy time.Time, limit int) ([]models.ResumeAnalysis, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.ResumeAnalysis
	for _, a := range r.s.analyses {
		if a.IndexedAt != nil {
			continue
		}
		if !dueBy.IsZero() && a.IndexRetryAt != nil && a.IndexRetryAt.After(dueBy) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IndexAttempts != out[j].IndexAttempts {
			return out[i].IndexAttempts < out[j].IndexAttempts
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryAnalysisRepo) MarkIndexed(_ context.Context, id uint, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.analyses[id]
	if !ok {
		return ErrNotFound
	}
	a.IndexedAt = &at
	r.s.analyses[id] = a
	return nil
}

func (r *memoryAnalysisRepo) RecordIndexFailure(_ context.Context, id uint, retryAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.analyses[id]
	if !ok {
		return ErrNotFound
	}
	a.IndexAttempts++
	a.IndexRetryAt = &retryAt
	r.s.analyses[id] = a
	return nil
}

func (r *memoryAnalysisRepo) UpdateResumeText(_ context.Context, id uint, text string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.analyses[id]
	if !ok {
		return ErrNotFound
	}
	a.ResumeText = text
	r.s.analyses[id] = a
	return nil
}

type memoryReportRepo struct{ s *MemoryStore }

func (r *memoryReportRepo) Create(_ context.Context, report *models.InterviewReport) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[report.UserID]; !ok {
		return ErrNotFound
	}
	report.ID = r.s.id("interview_reports")
	report.CreatedAt = time.Now()
	r.s.reports[report.ID] = *report
	return nil
}

func (r *memoryReportRepo) FindLatestByUserID(_ context.Context, userID uint) (*models.InterviewReport, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var latest *models.InterviewReport
	for _, rep := range r.s.reports {
		if rep.UserID != userID {
			continue
		}
		if latest == nil || rep.ID > latest.ID {
			rep := rep
			latest = &rep
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return latest, nil
}
