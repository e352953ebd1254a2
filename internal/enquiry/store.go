// internal/enquiry/store.go
package enquiry

import "context"

type Store interface {
	Create(ctx context.Context, e *Enquiry) error
}
