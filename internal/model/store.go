package model

import "context"

// BundleStore persists bundles across restarts.
// 저장 실패는 성능 저하일 뿐 서빙을 막아서는 안 된다.
type BundleStore interface {
	// Save persists the bundle and records its key in the index.
	Save(ctx context.Context, b *Bundle) error
	// Load restores one bundle. (nil, false, nil) 은 단순 부재.
	Load(ctx context.Context, key string) (*Bundle, bool, error)
	// Index lists keys of previously persisted bundles.
	Index(ctx context.Context) ([]string, error)
}
