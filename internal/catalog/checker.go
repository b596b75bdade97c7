// internal/catalog/checker.go

package catalog

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"pideploy/internal/models"
	"pideploy/internal/pderr"
)

// archMarkers are the substrings a download link must carry for its declared
// architecture. A link holding the opposite marker is a packaging mistake.
var archMarkers = map[models.Architecture]string{
	models.Arch32: "arm32",
	models.Arch64: "arm64",
}

// Checker validates catalog integrity offline. It is a maintenance tool:
// integrity errors are fatal to the checker only and are never reached at
// deployment time because the embedded catalog ships pre-validated.
type Checker struct {
	validate *validator.Validate

	// LinkProbeTimeout bounds each HEAD request when probing links.
	LinkProbeTimeout time.Duration
}

// NewChecker builds a checker with struct-level validation rules.
func NewChecker() *Checker {
	return &Checker{
		validate:         validator.New(),
		LinkProbeTimeout: 15 * time.Second,
	}
}

// Check runs the full set of integrity rules over a catalog and returns
// every violation found rather than stopping at the first.
func (ck *Checker) Check(c *Catalog) []error {
	var errs []error

	seenLinks := make(map[string]string)   // link -> item label
	seenPairs := make(map[string]struct{}) // name/arch pair
	label := func(i Item) string {
		return fmt.Sprintf("%s %s (%s)", i.Name, i.Version, i.Architecture)
	}

	for _, item := range c.Items {
		if err := ck.validate.Struct(item); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", label(item), err))
		}
		if err := ValidateVersion(item.Version); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", label(item), err))
		}

		// Links must be unique across the whole catalog.
		if prev, dup := seenLinks[item.Link]; dup {
			errs = append(errs, pderr.Newf(pderr.CodeDuplicateLink,
				"%s shares a download link with %s", label(item), prev))
		}
		seenLinks[item.Link] = label(item)

		// (name, architecture) pairs must be unique so resolution can
		// never tie.
		pair := fmt.Sprintf("%s/%s", item.Name, item.Architecture)
		if _, dup := seenPairs[pair]; dup {
			errs = append(errs, pderr.Newf(pderr.CodeDuplicateComponent,
				"duplicate catalog entry %s", label(item)))
		}
		seenPairs[pair] = struct{}{}

		errs = append(errs, ck.checkArchLink(item, label(item))...)
	}

	return errs
}

// checkArchLink verifies the link carries its own architecture marker and
// never the opposite one.
func (ck *Checker) checkArchLink(item Item, label string) []error {
	var errs []error
	link := strings.ToLower(item.Link)

	marker, ok := archMarkers[item.Architecture]
	if !ok {
		errs = append(errs, pderr.Newf(pderr.CodeArchLinkMismatch,
			"%s declares no concrete architecture", label))
		return errs
	}
	if !strings.Contains(link, marker) {
		errs = append(errs, pderr.Newf(pderr.CodeArchLinkMismatch,
			"%s link is missing the %q marker", label, marker))
	}
	if opposite := archMarkers[item.Architecture.Opposite()]; strings.Contains(link, opposite) {
		errs = append(errs, pderr.Newf(pderr.CodeArchLinkMismatch,
			"%s link carries the opposite architecture marker %q", label, opposite))
	}
	return errs
}

// ProbeLinks issues a HEAD request against every catalog link concurrently
// and reports each unreachable one. Network reachability is advisory; it is
// checked only when the maintainer asks for it.
func (ck *Checker) ProbeLinks(ctx context.Context, c *Catalog) []error {
	client := &http.Client{Timeout: ck.LinkProbeTimeout}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	results := make([]error, len(c.Items))
	for idx := range c.Items {
		idx := idx
		item := c.Items[idx]
		g.Go(func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodHead, item.Link, nil)
			if err != nil {
				results[idx] = fmt.Errorf("%s %s: %w", item.Name, item.Version, err)
				return nil
			}
			resp, err := client.Do(req)
			if err != nil {
				results[idx] = fmt.Errorf("%s %s: %w", item.Name, item.Version, err)
				return nil
			}
			resp.Body.Close()
			if resp.StatusCode >= 400 {
				results[idx] = fmt.Errorf("%s %s: link returned status %d",
					item.Name, item.Version, resp.StatusCode)
			}
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, err := range results {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
