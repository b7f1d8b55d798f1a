// Package resolve maps human-facing filter names (status labels, a group
// name) to the numeric ids the remote search API requires.
package resolve

import (
	"context"
	"strings"
	"sync"

	"ticketwatch/internal/query"
	"ticketwatch/internal/remote"
	"ticketwatch/pkg/logx"
)

// Spec is the human-facing filter configuration.
type Spec struct {
	BaseQuery    string
	Tags         []string
	GroupName    string
	StatusLabels []string
}

// Empty reports whether no criterion source is configured at all.
func (s Spec) Empty() bool {
	if strings.TrimSpace(s.BaseQuery) != "" || strings.TrimSpace(s.GroupName) != "" {
		return false
	}
	for _, t := range s.Tags {
		if strings.TrimSpace(t) != "" {
			return false
		}
	}
	for _, l := range s.StatusLabels {
		if strings.TrimSpace(l) != "" {
			return false
		}
	}
	return true
}

// Criteria is the resolved form of a Spec, including the final query string.
type Criteria struct {
	BaseQuery string
	Tags      []string
	GroupID   *int64
	StatusIDs []int64
	Query     string
}

type Resolver struct {
	client remote.Client
	log    logx.Logger
}

func New(client remote.Client, log logx.Logger) *Resolver {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Resolver{client: client, log: log}
}

// Resolve performs the status and group lookups (concurrently, they are
// independent) and builds the search query.
//
// An unmatched label or group is a warning, not an error: it simply drops
// that filter. A remote failure on either lookup is returned so the caller
// can retry.
func (r *Resolver) Resolve(ctx context.Context, spec Spec) (Criteria, error) {
	var (
		wg sync.WaitGroup

		statusIDs []int64
		statusErr error

		groupID  *int64
		groupErr error
	)

	if hasAny(spec.StatusLabels) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			statusIDs, statusErr = r.resolveStatuses(ctx, spec.StatusLabels)
		}()
	}
	if strings.TrimSpace(spec.GroupName) != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			groupID, groupErr = r.resolveGroup(ctx, spec.GroupName)
		}()
	}
	wg.Wait()

	if statusErr != nil {
		return Criteria{}, statusErr
	}
	if groupErr != nil {
		return Criteria{}, groupErr
	}

	c := Criteria{
		BaseQuery: strings.TrimSpace(spec.BaseQuery),
		Tags:      compact(spec.Tags),
		GroupID:   groupID,
		StatusIDs: statusIDs,
	}
	c.Query = query.Build(c.BaseQuery, c.Tags, c.GroupID, c.StatusIDs)
	return c, nil
}

// resolveStatuses matches each target label case-insensitively against the
// remote status labels. Unmatched labels are dropped with a warning.
func (r *Resolver) resolveStatuses(ctx context.Context, labels []string) ([]int64, error) {
	statuses, err := r.client.Statuses(ctx)
	if err != nil {
		return nil, err
	}

	byLabel := make(map[string]int64, len(statuses))
	for _, s := range statuses {
		byLabel[strings.ToLower(strings.TrimSpace(s.Label))] = s.ID
	}

	var (
		ids     []int64
		matched []string
		missed  []string
	)
	for _, want := range labels {
		want = strings.TrimSpace(want)
		if want == "" {
			continue
		}
		if id, ok := byLabel[strings.ToLower(want)]; ok {
			ids = append(ids, id)
			matched = append(matched, want)
		} else {
			missed = append(missed, want)
		}
	}

	if len(missed) > 0 {
		r.log.Warn("status labels not found on remote",
			logx.String("missing", strings.Join(missed, ", ")))
	}
	r.log.Info("resolved status filter",
		logx.String("labels", strings.Join(matched, ", ")),
		logx.Int("ids", len(ids)))
	return ids, nil
}

// resolveGroup picks the best-matching group by tiered precedence: exact
// case-insensitive name, else prefix, else substring. The first tier with a
// hit wins; no hit at any tier means no group filter.
func (r *Resolver) resolveGroup(ctx context.Context, name string) (*int64, error) {
	groups, err := r.client.Groups(ctx)
	if err != nil {
		return nil, err
	}

	want := strings.ToLower(strings.TrimSpace(name))
	match := func(pred func(got string) bool) *remote.Group {
		for i := range groups {
			if pred(strings.ToLower(strings.TrimSpace(groups[i].Name))) {
				return &groups[i]
			}
		}
		return nil
	}

	g := match(func(got string) bool { return got == want })
	if g == nil {
		g = match(func(got string) bool { return strings.HasPrefix(got, want) })
	}
	if g == nil {
		g = match(func(got string) bool { return strings.Contains(got, want) })
	}

	if g == nil {
		r.log.Warn("group not found on remote, skipping group filter",
			logx.String("group", name))
		return nil, nil
	}
	r.log.Info("resolved group filter",
		logx.String("group", g.Name), logx.Int64("id", g.ID))
	id := g.ID
	return &id, nil
}

func hasAny(vals []string) bool {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

func compact(vals []string) []string {
	out := vals[:0:0]
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
