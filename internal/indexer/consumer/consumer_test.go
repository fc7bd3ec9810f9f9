package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/kafka"
)

type fakeReloader struct {
	ids []string
	err error
}

func (f *fakeReloader) Reload(ctx context.Context, id string) error {
	f.ids = append(f.ids, id)
	return f.err
}

func message(t *testing.T, typ string, ev indexer.IndexCompleteEvent) kafka.Message {
	t.Helper()
	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatal(err)
	}
	return kafka.Message{Key: []byte(ev.GenerationID), Type: typ, Value: data}
}

func TestHandleIndexComplete(t *testing.T) {
	r := &fakeReloader{}
	h := HandleIndexComplete(r, "replica-a")
	ctx := context.Background()

	msgs := []kafka.Message{
		message(t, indexer.EventIndexComplete, indexer.IndexCompleteEvent{GenerationID: "g1", Origin: "replica-b"}),
		message(t, indexer.EventIndexComplete, indexer.IndexCompleteEvent{GenerationID: "g2", Origin: "replica-a"}),
		message(t, "something.else", indexer.IndexCompleteEvent{GenerationID: "g3"}),
		message(t, indexer.EventIndexComplete, indexer.IndexCompleteEvent{}),
		{Type: indexer.EventIndexComplete, Value: []byte("not json")},
		message(t, "", indexer.IndexCompleteEvent{GenerationID: "g4"}),
	}
	for i, m := range msgs {
		if err := h(ctx, m); err != nil {
			t.Errorf("message %d: unexpected error %v", i, err)
		}
	}
	if diff := cmp.Diff([]string{"g1", "g4"}, r.ids); diff != "" {
		t.Errorf("reloaded ids (-want +got):\n%s", diff)
	}
}

func TestHandleIndexCompleteReturnsReloadError(t *testing.T) {
	r := &fakeReloader{err: errors.New("store down")}
	h := HandleIndexComplete(r, "")
	err := h(context.Background(), message(t, indexer.EventIndexComplete, indexer.IndexCompleteEvent{GenerationID: "g1"}))
	if err == nil {
		t.Fatal("expected reload error to propagate")
	}
}
