package memory_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/zaintech991/ReguLens/internal/storage/memory"
	"github.com/zaintech991/ReguLens/internal/storage/models"
)

func documents(n int) []models.Document {
	docs := make([]models.Document, 0, n)
	for i := 0; i < n; i++ {
		docs = append(docs, models.Document{
			ID:          fmt.Sprintf("DOC-%d", 1000+i),
			Title:       "Policy",
			Body:        "Operators must maintain logs.",
			Category:    "Safety",
			PublishedAt: "2024-04-10",
		})
	}
	return docs
}

func TestStore_ReplaceDocumentsIsAtomic(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	gt.NoError(t, store.SaveDocuments(ctx, documents(3))).Required()

	var empty atomic.Int32
	var wg sync.WaitGroup
	done := make(chan struct{})

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				docs, err := store.LoadDocuments(ctx)
				if err != nil || len(docs) != 3 {
					empty.Add(1)
				}
			}
		}()
	}

	for i := 0; i < 500; i++ {
		gt.NoError(t, store.ReplaceDocuments(ctx, documents(3))).Required()
	}
	close(done)
	wg.Wait()

	gt.Value(t, empty.Load()).Equal(int32(0))
}

func TestStore_ReplaceDocuments(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	gt.NoError(t, store.SaveDocuments(ctx, documents(3))).Required()
	gt.NoError(t, store.ReplaceDocuments(ctx, documents(1))).Required()

	docs, err := store.LoadDocuments(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, docs).Length(1)
	gt.Value(t, docs[0].ID).Equal("DOC-1000")
	gt.Bool(t, docs[0].CreatedAt.IsZero()).False()
}
