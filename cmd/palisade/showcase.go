package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/palisade/pkg/constraint"
	"github.com/aretw0/palisade/pkg/domain"
)

// showcaseTree builds the demonstration stack served by "palisade serve":
// a small content pipeline plus an ops subtree whose actions depend on
// local tooling being installed.
func showcaseTree() *domain.Feature {
	searchPath := filepath.SplitList(os.Getenv("PATH"))

	return &domain.Feature{
		Name:        "ShowcaseFeature",
		Stack:       "showcase",
		Description: "Demonstration gate tree",
		Features: []*domain.Feature{
			{
				Name:        "ContentFeature",
				Description: "Article publishing",
				Actions: []*domain.Action{
					{
						Name:        "PreviewAction",
						Description: "Render an article preview (open to guests)",
						AllowGuests: true,
						Perform: func(ctx context.Context, call *domain.Call) (*domain.Envelope, error) {
							return domain.Success(map[string]any{
								"preview": map[string]any{
									"title":    call.Arg("title"),
									"rendered": time.Now().UTC().Format(time.RFC3339),
								},
							}), nil
						},
					},
					{
						Name:        "PublishArticleAction",
						Description: "Publish an article",
						Availability: []domain.Check{
							domain.NotEmpty(domain.Arg("title"), "a title is required"),
							domain.Can("publish", nil, "you may not publish articles"),
						},
						Perform: func(ctx context.Context, call *domain.Call) (*domain.Envelope, error) {
							title, _ := call.Arg("title").(string)
							return domain.Success(map[string]any{
								"article": map[string]any{
									"title": title,
									"slug":  strings.ToLower(strings.ReplaceAll(title, " ", "-")),
								},
							}), nil
						},
					},
				},
			},
			{
				Name:        "OpsFeature",
				Description: "Operational tooling",
				Constraints: []domain.Constraint{
					constraint.CommandOnPath("git", searchPath...),
				},
				Actions: []*domain.Action{
					{
						Name:        "PurgeCacheAction",
						Description: "Purge the local build cache",
						Availability: []domain.Check{
							domain.Can("operate", nil, "you may not run ops actions"),
							domain.Equal(domain.Arg("confirm"), domain.Lit(true), "pass confirm=true to purge"),
						},
						Prepare: func(ctx context.Context, call *domain.Call) (*domain.Envelope, error) {
							return domain.Success(map[string]any{"estimate": "dry run, nothing purged"}), nil
						},
						Perform: func(ctx context.Context, call *domain.Call) (*domain.Envelope, error) {
							return domain.Success(map[string]any{"purged": true}), nil
						},
					},
				},
			},
		},
	}
}
