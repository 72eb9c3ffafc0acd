package acumbamail

import (
	"context"
	"fmt"
	"log"
)

const (
	TemplatePageSize = 100
	// MaxTemplatePages bounds a listing that never returns a short page.
	MaxTemplatePages = 1000
)

type TemplatePager interface {
	GetTemplates(ctx context.Context, page, pageSize int) ([]RemoteTemplate, error)
}

// FetchAllTemplates walks the paged template listing until a page comes back
// with fewer than TemplatePageSize items. An error on the first page is
// returned; an error on a later page ends the walk and keeps what was fetched.
func FetchAllTemplates(ctx context.Context, pager TemplatePager) ([]RemoteTemplate, error) {
	all := make([]RemoteTemplate, 0, TemplatePageSize)

	for page := 1; page <= MaxTemplatePages; page++ {
		items, err := pager.GetTemplates(ctx, page, TemplatePageSize)
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("fetch templates page 1: %w", err)
			}
			log.Printf("⚠️ [Acumbamail] templates page %d failed, keeping %d templates: %v", page, len(all), err)
			return all, nil
		}

		all = append(all, items...)
		if len(items) < TemplatePageSize {
			return all, nil
		}
	}

	log.Printf("⚠️ [Acumbamail] stopped template listing after %d pages", MaxTemplatePages)
	return all, nil
}
