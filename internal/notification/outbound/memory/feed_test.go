package memory

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/anastasipancheva/miniapppass/internal/notification/entity"
	"github.com/anastasipancheva/miniapppass/internal/shared/event"
)

func TestFeed_Latest(t *testing.T) {
	// Arrange
	f := NewFeed(10)
	ctx := context.Background()
	for i := range 3 {
		f.Append(ctx, entity.Notification{ID: strconv.Itoa(i), Severity: event.SeverityInfo})
	}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{name: "all", limit: 0, want: []string{"2", "1", "0"}},
		{name: "limited", limit: 2, want: []string{"2", "1"}},
		{name: "over", limit: 50, want: []string{"2", "1", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			got := f.Latest(ctx, tt.limit)

			// Assert
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i, n := range got {
				if n.ID != tt.want[i] {
					t.Fatalf("[%d] = %s, want %s", i, n.ID, tt.want[i])
				}
			}
		})
	}
}

func TestFeed_Retention(t *testing.T) {
	// Arrange
	f := NewFeed(3)
	ctx := context.Background()

	// Act
	for i := range 5 {
		f.Append(ctx, entity.Notification{ID: strconv.Itoa(i)})
	}

	// Assert
	if f.Len() != 3 {
		t.Fatalf("Len = %d, want 3", f.Len())
	}
	got := f.Latest(ctx, 0)
	if got[0].ID != "4" || got[2].ID != "2" {
		t.Fatalf("retained = %+v, want 4..2", got)
	}
}

func TestFeed_ConcurrentAppend(t *testing.T) {
	// Arrange
	f := NewFeed(1000)
	ctx := context.Background()
	var wg sync.WaitGroup

	// Act
	for i := range 50 {
		wg.Go(func() {
			for j := range 10 {
				f.Append(ctx, entity.Notification{ID: strconv.Itoa(i*10 + j)})
			}
		})
	}
	wg.Wait()

	// Assert
	if f.Len() != 500 {
		t.Fatalf("Len = %d, want 500", f.Len())
	}
}
