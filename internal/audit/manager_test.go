package audit_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bayoubeans/coffee-orders/internal/audit"
)

type captureProducer struct {
	mu       sync.Mutex
	messages [][]byte
	topics   []string
}

func (p *captureProducer) SendMessage(_ context.Context, topic string, _ []byte, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.messages = append(p.messages, value)
	return nil
}

func (p *captureProducer) Close() error { return nil }

func (p *captureProducer) entries(t *testing.T) []audit.Entry {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()

	var all []audit.Entry
	for _, msg := range p.messages {
		var batch []audit.Entry
		require.NoError(t, json.Unmarshal(msg, &batch))
		all = append(all, batch...)
	}
	return all
}

func (p *captureProducer) messageCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.messages)
}

func TestManager_FlushesFullBatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	producer := &captureProducer{}
	mgr := audit.NewManager(producer, "audit_logs", 2, 3, time.Minute)
	mgr.Start(ctx)
	defer mgr.Shutdown(context.Background())

	for i := 0; i < 3; i++ {
		mgr.LogEntry(ctx, audit.Entry{Action: "add_order", Outcome: "ok"})
	}

	require.Eventually(t, func() bool {
		return producer.messageCount() >= 1
	}, time.Second, 10*time.Millisecond)

	entries := producer.entries(t)
	assert.Len(t, entries, 3)
	assert.Equal(t, "audit_logs", producer.topics[0])
}

func TestManager_FlushesOnTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	producer := &captureProducer{}
	mgr := audit.NewManager(producer, "audit_logs", 1, 100, 50*time.Millisecond)
	mgr.Start(ctx)
	defer mgr.Shutdown(context.Background())

	mgr.LogEntry(ctx, audit.Entry{Action: "login", Outcome: "success"})

	require.Eventually(t, func() bool {
		return producer.messageCount() >= 1
	}, time.Second, 10*time.Millisecond)

	entries := producer.entries(t)
	require.Len(t, entries, 1)
	assert.Equal(t, "login", entries[0].Action)
}

func TestManager_FlushesPendingOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	producer := &captureProducer{}
	mgr := audit.NewManager(producer, "audit_logs", 1, 100, time.Minute)
	mgr.Start(ctx)

	mgr.LogEntry(ctx, audit.Entry{Action: "delete_order", Outcome: "ok"})
	mgr.LogEntry(ctx, audit.Entry{Action: "update_order", Outcome: "ok"})

	mgr.Shutdown(context.Background())

	assert.Len(t, producer.entries(t), 2)
}

func TestManager_DrainsQueueOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	producer := &captureProducer{}
	mgr := audit.NewManager(producer, "audit_logs", 2, 2, time.Minute)
	mgr.Start(ctx)

	for i := 0; i < 5; i++ {
		mgr.LogEntry(ctx, audit.Entry{Action: "add_order", Outcome: "ok"})
	}
	mgr.Shutdown(context.Background())

	assert.Len(t, producer.entries(t), 5)
}
