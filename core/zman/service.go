package zman

import (
	"context"

	"github.com/google/uuid"

	"github.com/mirpeset/mirpeset/core"
)

type (
	// Store persists the zman collection locally; zmanim are not mirrored
	// to the remote store.
	Store interface {
		LoadZmanim(ctx context.Context) ([]Zman, error)
		SaveZmanim(ctx context.Context, zmanim []Zman) error
	}

	Service struct {
		store Store
		clock core.Clock
	}

	// BulkResult reports how a bulk insert went.
	BulkResult struct {
		Inserted int `json:"inserted"`
		Skipped  int `json:"skipped"`
	}
)

func NewService(store Store, clock core.Clock) *Service {
	return &Service{store: store, clock: clock}
}

func (svc *Service) QueryAll(ctx context.Context) ([]Zman, error) {
	return svc.store.LoadZmanim(ctx)
}

func (svc *Service) Create(ctx context.Context, nz NewZman) (Zman, error) {
	all, err := svc.store.LoadZmanim(ctx)
	if err != nil {
		return Zman{}, err
	}

	z := Zman{
		ID:        uuid.New().String(),
		Date:      nz.Date,
		Time:      nz.Time,
		Label:     nz.Label,
		Type:      nz.Type,
		CreatedAt: svc.clock.Now(),
	}
	all = append(all, z)
	if err := svc.store.SaveZmanim(ctx, all); err != nil {
		return Zman{}, err
	}
	return z, nil
}

// BulkInsert adds zmanim, skipping any whose (day, type, time) key already
// exists in the collection or earlier in the batch.
func (svc *Service) BulkInsert(ctx context.Context, items []NewZman) (BulkResult, error) {
	existing, err := svc.store.LoadZmanim(ctx)
	if err != nil {
		return BulkResult{}, err
	}

	seen := make(map[string]struct{}, len(existing))
	for _, z := range existing {
		seen[z.DedupKey()] = struct{}{}
	}

	var res BulkResult
	for _, item := range items {
		z := Zman{
			ID:        uuid.New().String(),
			Date:      item.Date,
			Time:      item.Time,
			Label:     item.Label,
			Type:      item.Type,
			CreatedAt: svc.clock.Now(),
		}
		if _, dup := seen[z.DedupKey()]; dup {
			res.Skipped++
			continue
		}
		existing = append(existing, z)
		seen[z.DedupKey()] = struct{}{}
		res.Inserted++
	}

	if res.Inserted > 0 {
		if err := svc.store.SaveZmanim(ctx, existing); err != nil {
			return res, err
		}
	}
	return res, nil
}
