package resolve

import (
	"context"
	"testing"

	"ticketwatch/internal/remote"
	"ticketwatch/pkg/logx"
)

type fakeClient struct {
	statuses []remote.Status
	groups   []remote.Group

	statusErr error
	groupErr  error
}

func (f *fakeClient) Statuses(ctx context.Context) ([]remote.Status, error) {
	return f.statuses, f.statusErr
}
func (f *fakeClient) Groups(ctx context.Context) ([]remote.Group, error) {
	return f.groups, f.groupErr
}
func (f *fakeClient) Search(ctx context.Context, q string) ([]remote.Ticket, error) {
	return nil, nil
}

func TestGroupMatchTiering(t *testing.T) {
	t.Parallel()
	c := &fakeClient{groups: []remote.Group{
		{ID: 10, Name: "EMEA Support"},
		{ID: 20, Name: "EMEA"},
	}}
	r := New(c, logx.Nop())

	got, err := r.Resolve(context.Background(), Spec{GroupName: "emea"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.GroupID == nil || *got.GroupID != 20 {
		t.Fatalf("expected exact match id 20, got %v", got.GroupID)
	}
}

func TestGroupPrefixBeatsContains(t *testing.T) {
	t.Parallel()
	c := &fakeClient{groups: []remote.Group{
		{ID: 1, Name: "Global Tier 2"},
		{ID: 2, Name: "Tier 2"},
	}}
	r := New(c, logx.Nop())

	got, err := r.Resolve(context.Background(), Spec{GroupName: "tier"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.GroupID == nil || *got.GroupID != 2 {
		t.Fatalf("expected prefix match id 2, got %v", got.GroupID)
	}
}

func TestGroupNoMatchIsNotAnError(t *testing.T) {
	t.Parallel()
	c := &fakeClient{groups: []remote.Group{{ID: 1, Name: "Billing"}}}
	r := New(c, logx.Nop())

	got, err := r.Resolve(context.Background(), Spec{GroupName: "ops", BaseQuery: "status:open"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.GroupID != nil {
		t.Fatalf("expected nil group id, got %v", *got.GroupID)
	}
	if got.Query != "status:open" {
		t.Fatalf("Query = %q", got.Query)
	}
}

func TestStatusResolution(t *testing.T) {
	t.Parallel()
	c := &fakeClient{statuses: []remote.Status{
		{ID: 101, Label: "Waiting on customer"},
		{ID: 102, Label: "Escalated"},
		{ID: 103, Label: "On hold"},
	}}
	r := New(c, logx.Nop())

	got, err := r.Resolve(context.Background(), Spec{
		StatusLabels: []string{"escalated", "WAITING ON CUSTOMER", "nope"},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(got.StatusIDs) != 2 || got.StatusIDs[0] != 102 || got.StatusIDs[1] != 101 {
		t.Fatalf("StatusIDs = %v", got.StatusIDs)
	}
	if got.Query != "custom_status_id:102 custom_status_id:101" {
		t.Fatalf("Query = %q", got.Query)
	}
}

func TestStatusLookupErrorPropagates(t *testing.T) {
	t.Parallel()
	c := &fakeClient{statusErr: &remote.Error{Op: "statuses", Kind: remote.KindNetwork}}
	r := New(c, logx.Nop())

	_, err := r.Resolve(context.Background(), Spec{StatusLabels: []string{"open"}})
	if !remote.Retriable(err) {
		t.Fatalf("expected retriable remote error, got %v", err)
	}
}

func TestSpecEmpty(t *testing.T) {
	t.Parallel()
	if !(Spec{Tags: []string{" "}}).Empty() {
		t.Fatal("blank-only spec should be empty")
	}
	if (Spec{BaseQuery: "q"}).Empty() {
		t.Fatal("base query should count as a criterion")
	}
	if (Spec{StatusLabels: []string{"open"}}).Empty() {
		t.Fatal("status labels should count as a criterion")
	}
}
