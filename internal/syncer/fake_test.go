package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	logger "github.com/virtualxperience/n8nsync/internal/logging"
	"github.com/virtualxperience/n8nsync/internal/record"
)

// fakeAPI is an in-memory stand-in for the remote instance. Stores are keyed
// by id; failure hooks let tests fault individual calls.
type fakeAPI struct {
	stores map[record.Kind]map[string]record.Record
	nextID int

	healthFailures int
	healthCalls    int
	listErr        error
	createErr      func(name string) error
	updateErr      func(id string) error

	creates int
	updates int
	lists   int
	gets    int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		stores: map[record.Kind]map[string]record.Record{
			record.KindWorkflow:   {},
			record.KindCredential: {},
		},
	}
}

// seed places a record remotely without counting as a mutation.
func (f *fakeAPI) seed(kind record.Kind, id, name string) {
	payload := fmt.Sprintf(`{"id":%q,"name":%q}`, id, name)
	f.stores[kind][id] = record.Record{ID: id, Name: name, Payload: json.RawMessage(payload)}
}

func (f *fakeAPI) mutations() int {
	return f.creates + f.updates
}

func (f *fakeAPI) Health(ctx context.Context) error {
	f.healthCalls++
	if f.healthCalls <= f.healthFailures {
		return fmt.Errorf("connection refused")
	}
	return nil
}

func (f *fakeAPI) List(ctx context.Context, kind record.Kind) ([]record.Summary, error) {
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var summaries []record.Summary
	for _, rec := range f.stores[kind] {
		summaries = append(summaries, record.Summary{ID: rec.ID, Name: rec.Name})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })
	return summaries, nil
}

func (f *fakeAPI) Get(ctx context.Context, kind record.Kind, id string) (record.Record, error) {
	f.gets++
	rec, ok := f.stores[kind][id]
	if !ok {
		return record.Record{}, fmt.Errorf("%s %s not found", kind, id)
	}
	return rec, nil
}

func (f *fakeAPI) Create(ctx context.Context, kind record.Kind, payload json.RawMessage) (record.Record, error) {
	rec, err := record.Parse(payload)
	if err != nil {
		return record.Record{}, err
	}
	if f.createErr != nil {
		if err := f.createErr(rec.Name); err != nil {
			return record.Record{}, err
		}
	}
	f.creates++
	f.nextID++
	rec.ID = fmt.Sprintf("gen-%d", f.nextID)
	f.stores[kind][rec.ID] = rec
	return rec, nil
}

func (f *fakeAPI) Update(ctx context.Context, kind record.Kind, id string, payload json.RawMessage) error {
	if f.updateErr != nil {
		if err := f.updateErr(id); err != nil {
			return err
		}
	}
	if _, ok := f.stores[kind][id]; !ok {
		return fmt.Errorf("%s %s not found", kind, id)
	}
	f.updates++
	rec, err := record.Parse(payload)
	if err != nil {
		return err
	}
	rec.ID = id
	f.stores[kind][id] = rec
	return nil
}

var _ API = (*fakeAPI)(nil)

func quietLogger() logger.Logger {
	return logger.Logger{}
}
