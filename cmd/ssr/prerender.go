package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/ssr/internal/demo"
	"github.com/vango-dev/ssr/internal/errors"
	"github.com/vango-dev/ssr/pkg/prerender"
)

func prerenderCmd(dir *string) *cobra.Command {
	var (
		out    string
		bucket string
	)

	cmd := &cobra.Command{
		Use:   "prerender",
		Short: "Generate static HTML for routes without parameters",
		Long: `Render every static route with the string adapter and store the
output as route/index.html, either in a directory or in an S3 bucket.
Routes that redirect become meta-refresh stubs.

S3 credentials are read from AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and
AWS_SESSION_TOKEN.

Examples:
  ssr prerender
  ssr prerender --out=public
  ssr prerender --bucket=my-site`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*dir, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if bucket != "" {
				a.cfg.Prerender.S3.Bucket = bucket
			}

			pages, err := selectPages(demo.StaticPages(a.demo), a.cfg.Prerender.Routes)
			if err != nil {
				return err
			}

			var store prerender.Store
			target := ""
			if a.cfg.Prerender.S3.Bucket != "" {
				s3Store, err := prerender.NewS3StoreFromConfig(a.cfg.Prerender.S3)
				if err != nil {
					return err
				}
				store = s3Store
				target = "s3://" + a.cfg.Prerender.S3.Bucket + "/" + a.cfg.Prerender.S3.Prefix
			} else {
				outDir := out
				if outDir == "" {
					outDir = a.cfg.OutPath()
					if a.cfg.Path() == "" && !filepath.IsAbs(outDir) {
						outDir = filepath.Join(*dir, outDir)
					}
				}
				fileStore, err := prerender.NewFileStore(outDir)
				if err != nil {
					return err
				}
				store = fileStore
				target = outDir
			}

			res, err := prerender.Prerender(cmd.Context(), store, pages, prerender.Options{
				CompressHTML: a.cfg.Render.CompressHTML,
				Logger:       a.logger,
				Observer:     a.server.Observer,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, r := range res.Written {
				info(w, "%s → %s", r, prerender.OutputPath(r))
			}
			for _, r := range res.Redirects {
				info(w, "%s → %s (redirect)", r, prerender.OutputPath(r))
			}
			for _, r := range res.Skipped {
				warn(w, "%s skipped", r)
			}
			success(w, "Prerendered %d pages to %s", len(res.Written)+len(res.Redirects), target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output directory (default from config)")
	cmd.Flags().StringVar(&bucket, "bucket", "", "Upload to this S3 bucket instead of a directory")

	return cmd
}

// selectPages keeps the pages named in routes, in that order. An empty
// list keeps every page.
func selectPages(pages []prerender.Page, routes []string) ([]prerender.Page, error) {
	if len(routes) == 0 {
		return pages, nil
	}
	byRoute := make(map[string]prerender.Page, len(pages))
	for _, p := range pages {
		byRoute[p.Route] = p
	}
	selected := make([]prerender.Page, 0, len(routes))
	for _, r := range routes {
		p, ok := byRoute[r]
		if !ok {
			return nil, errors.New("E180").
				WithRoute(r).
				WithSuggestion("Only routes without URL parameters can be prerendered")
		}
		selected = append(selected, p)
	}
	return selected, nil
}
