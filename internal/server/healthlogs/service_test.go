package healthlogs

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/healthboard/healthboard/internal/common"
	"github.com/healthboard/healthboard/internal/server/reqctx"
)

// fakeRepo mimics the storage-side isolation policy: it filters rows by the
// ambient principal the same way the Postgres policy filters by the
// imprinted identity.
type fakeRepo struct {
	rows   []*Log
	nextID int
}

func (r *fakeRepo) owner(ctx context.Context) string {
	id, _ := reqctx.PrincipalID(ctx)
	return id
}

func (r *fakeRepo) Create(ctx context.Context, log *Log) (*Log, error) {
	if log.UserID != r.owner(ctx) {
		// WITH CHECK would reject the insert
		return nil, common.ErrorStorage
	}
	r.nextID++
	log.ID = fmt.Sprintf("log-%d", r.nextID)
	log.LoggedAt = time.Now()
	r.rows = append(r.rows, log)
	return log, nil
}

func (r *fakeRepo) List(ctx context.Context) ([]*Log, error) {
	var visible []*Log
	for _, row := range r.rows {
		if row.UserID == r.owner(ctx) {
			visible = append(visible, row)
		}
	}
	return visible, nil
}

func (r *fakeRepo) Delete(ctx context.Context, id string) error {
	for i, row := range r.rows {
		if row.ID == id && row.UserID == r.owner(ctx) {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFoundOrDenied
}

func bound(principalID string) context.Context {
	return reqctx.WithPrincipal(context.Background(), principalID)
}

func TestCreate_AssignsAmbientOwner(t *testing.T) {
	t.Parallel()

	svc := NewService(&fakeRepo{})

	log, err := svc.Create(bound("alice"), "blood_pressure", "120/80", "morning")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if log.UserID != "alice" {
		t.Fatalf("expected ambient owner alice, got %q", log.UserID)
	}
	if log.ID == "" || log.LoggedAt.IsZero() {
		t.Fatalf("row not fully populated: %+v", log)
	}
}

func TestCreate_AnonymousRejected(t *testing.T) {
	t.Parallel()

	svc := NewService(&fakeRepo{})

	_, err := svc.Create(context.Background(), "mood", "ok", "")
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestList_IsolatedPerPrincipal(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{}
	svc := NewService(repo)

	if _, err := svc.Create(bound("alice"), "mood", "good", ""); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := svc.Create(bound("bob"), "mood", "bad", ""); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	aliceLogs, err := svc.List(bound("alice"))
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(aliceLogs) != 1 || aliceLogs[0].Value != "good" {
		t.Fatalf("alice must see exactly her own log, got %+v", aliceLogs)
	}

	bobLogs, err := svc.List(bound("bob"))
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	for _, l := range bobLogs {
		if l.UserID != "bob" {
			t.Fatalf("bob sees a foreign row: %+v", l)
		}
	}
}

func TestDelete_ForeignRowIndistinguishableFromMissing(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{}
	svc := NewService(repo)

	log, err := svc.Create(bound("alice"), "mood", "good", "")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	errForeign := svc.Delete(bound("bob"), log.ID)
	errMissing := svc.Delete(bound("bob"), "log-does-not-exist")

	if !errors.Is(errForeign, common.ErrNotFoundOrDenied) {
		t.Fatalf("foreign row: expected ErrNotFoundOrDenied, got %v", errForeign)
	}
	if !errors.Is(errMissing, common.ErrNotFoundOrDenied) {
		t.Fatalf("missing row: expected ErrNotFoundOrDenied, got %v", errMissing)
	}
	if errForeign.Error() != errMissing.Error() {
		t.Fatalf("caller can distinguish foreign from missing: %q vs %q", errForeign, errMissing)
	}

	// alice's row survived bob's attempt
	if err := svc.Delete(bound("alice"), log.ID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
}
