// internal/service/template_service.go
package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/unclebandit/acumbamail-sync/internal/acumbamail"
	appErrors "github.com/unclebandit/acumbamail-sync/internal/errors"
	"github.com/unclebandit/acumbamail-sync/internal/model"
	"github.com/unclebandit/acumbamail-sync/internal/repository"
)

// RenderTemplate replaces {key} placeholders with the given values.
func RenderTemplate(template string, data map[string]string) string {
	result := template
	for k, v := range data {
		result = strings.ReplaceAll(result, "{"+k+"}", v)
	}
	return result
}

type TemplateService struct {
	UserRepo     repository.UserRepositoryInterface
	TemplateRepo repository.TemplateRepositoryInterface
	NewClient    ClientFactory
}

type ImportResult struct {
	Imported int      `json:"imported"`
	Errors   []string `json:"errors,omitempty"`
}

type CreateTemplateInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	HTMLContent string  `json:"htmlContent"`
	Category    string  `json:"category"`
}

// ListAvailableRemoteTemplates walks every template page and keeps the available ones.
func (s *TemplateService) ListAvailableRemoteTemplates(ctx context.Context, userID int) ([]acumbamail.RemoteTemplate, error) {
	user, err := configuredUser(ctx, s.UserRepo, userID)
	if err != nil {
		return nil, err
	}

	all, err := s.NewClient(user.AuthToken()).GetAllTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch remote templates: %w", err)
	}

	available := []acumbamail.RemoteTemplate{}
	for _, t := range all {
		if t.Available {
			available = append(available, t)
		}
	}
	log.Printf("📄 [Templates] user %d: %d of %d remote templates available", userID, len(available), len(all))
	return available, nil
}

// ImportTemplates copies the selected remote templates into the local store.
// Unknown ids and name clashes are reported per template and do not stop the import.
func (s *TemplateService) ImportTemplates(ctx context.Context, userID int, templateIDs []string) (*ImportResult, error) {
	if len(templateIDs) == 0 {
		return nil, appErrors.NewValidation("templateIds", "no template ids given")
	}
	user, err := configuredUser(ctx, s.UserRepo, userID)
	if err != nil {
		return nil, err
	}

	api := s.NewClient(user.AuthToken())
	remote, err := api.GetAllTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch remote templates: %w", err)
	}
	byID := make(map[string]acumbamail.RemoteTemplate, len(remote))
	for _, t := range remote {
		byID[t.ID.String()] = t
	}

	already, err := s.TemplateRepo.FindByRemoteIDs(ctx, userID, templateIDs)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for _, id := range templateIDs {
		rt, ok := byID[id]
		if !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("template %s not found", id))
			continue
		}
		if already[id] != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("template %q is already imported", rt.Name))
			continue
		}
		existing, err := s.TemplateRepo.FindByName(ctx, userID, rt.Name)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("template %s: %v", id, err))
			continue
		}
		if existing != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("template %q already exists", rt.Name))
			continue
		}

		tmpl := importedTemplate(userID, rt, fetchTemplateBody(ctx, api, id))
		if err := s.TemplateRepo.Create(ctx, tmpl); err != nil {
			log.Printf("❌ [Templates] import %s failed: %v", id, err)
			result.Errors = append(result.Errors, fmt.Sprintf("template %s: %v", id, err))
			continue
		}
		result.Imported++
	}
	return result, nil
}

func (s *TemplateService) CreateTemplate(ctx context.Context, userID int, in CreateTemplateInput) (*model.EmailTemplate, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, appErrors.NewValidation("name", "is required")
	}
	if strings.TrimSpace(in.HTMLContent) == "" {
		return nil, appErrors.NewValidation("htmlContent", "is required")
	}
	tmpl := &model.EmailTemplate{
		UserID:      userID,
		Name:        in.Name,
		Description: in.Description,
		HTMLContent: in.HTMLContent,
		Category:    in.Category,
	}
	if err := s.TemplateRepo.Create(ctx, tmpl); err != nil {
		return nil, err
	}
	return tmpl, nil
}

func (s *TemplateService) ListTemplates(ctx context.Context, userID int) ([]model.EmailTemplate, error) {
	return s.TemplateRepo.ListByUser(ctx, userID)
}

// fetchTemplateBody tolerates failure; an unreadable body is stored empty.
func fetchTemplateBody(ctx context.Context, api acumbamail.API, templateID string) string {
	body, err := api.GetTemplate(ctx, templateID)
	if err != nil {
		log.Printf("⚠️ [Templates] could not fetch body of template %s: %v", templateID, err)
		return ""
	}
	return body
}

func importedTemplate(userID int, rt acumbamail.RemoteTemplate, body string) *model.EmailTemplate {
	remoteID := rt.ID.String()
	description := "Imported from Acumbamail: " + rt.Name
	return &model.EmailTemplate{
		UserID:               userID,
		AcumbamailTemplateID: &remoteID,
		Name:                 rt.Name,
		Description:          &description,
		HTMLContent:          body,
		Category:             model.TemplateCategoryImported,
	}
}
