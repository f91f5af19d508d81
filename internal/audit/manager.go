package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bayoubeans/coffee-orders/internal/kafka"
)

// Manager batches audit entries and hands full batches to a worker pool that
// publishes them to the audit topic. Batches flush on size or after a
// timeout, whichever comes first.
type Manager struct {
	workerCount int
	batchSize   int
	timeout     time.Duration
	topic       string
	producer    kafka.Producer

	inputChan  chan Entry
	batchChan  chan []Entry
	shutdownCh chan struct{}
	once       sync.Once

	wg sync.WaitGroup
}

func NewManager(producer kafka.Producer, topic string, workerCount, batchSize int, timeout time.Duration) *Manager {
	return &Manager{
		workerCount: workerCount,
		batchSize:   batchSize,
		timeout:     timeout,
		topic:       topic,
		producer:    producer,
		inputChan:   make(chan Entry, workerCount*batchSize*2),
		batchChan:   make(chan []Entry, workerCount*2),
		shutdownCh:  make(chan struct{}),
	}
}

func (m *Manager) Start(ctx context.Context) {
	log.Println("Starting audit manager")
	m.wg.Add(1)
	go m.runAggregator(ctx)

	for i := 0; i < m.workerCount; i++ {
		m.wg.Add(1)
		go m.runWorker(ctx, i)
	}

	go m.monitorShutdown(ctx)
}

func (m *Manager) Shutdown(ctx context.Context) {
	m.once.Do(func() {
		log.Println("Initiating audit manager shutdown")
		close(m.shutdownCh)

		done := make(chan struct{})
		go func() {
			m.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			log.Println("Audit manager shutdown completed")
		case <-ctx.Done():
			log.Println("WARNING: audit manager shutdown interrupted")
		}

		if err := m.producer.Close(); err != nil {
			log.Printf("ERROR: failed to close audit producer: %v", err)
		}
	})
}

func (m *Manager) monitorShutdown(ctx context.Context) {
	<-ctx.Done()
	m.Shutdown(context.Background())
}

// LogEntry queues one entry. If the context is already cancelled the entry
// is printed directly so it is never lost silently.
func (m *Manager) LogEntry(ctx context.Context, entry Entry) {
	select {
	case m.inputChan <- entry:
	case <-ctx.Done():
		m.emergencyLog(entry)
	}
}

func (m *Manager) runAggregator(ctx context.Context) {
	defer m.wg.Done()

	var (
		batch    []Entry
		timer    *time.Timer
		timeoutC <-chan time.Time
	)

	defer func() {
		if timer != nil {
			timer.Stop()
		}
		if len(batch) > 0 {
			m.dispatchBatch(batch)
		}
		close(m.batchChan)
	}()

	for {
		select {
		case entry, ok := <-m.inputChan:
			if !ok {
				return
			}

			batch = append(batch, entry)
			if len(batch) >= m.batchSize {
				m.dispatchBatch(batch)
				batch = nil
				timeoutC = nil
			} else if len(batch) == 1 {
				timer = time.NewTimer(m.timeout)
				timeoutC = timer.C
			}

		case <-timeoutC:
			m.dispatchBatch(batch)
			batch = nil
			timeoutC = nil

		case <-ctx.Done():
			batch = m.drainInput(batch)
			return

		case <-m.shutdownCh:
			batch = m.drainInput(batch)
			return
		}
	}
}

// drainInput empties whatever LogEntry already queued so accepted entries
// are flushed on shutdown rather than dropped.
func (m *Manager) drainInput(batch []Entry) []Entry {
	for {
		select {
		case entry := <-m.inputChan:
			batch = append(batch, entry)
			if len(batch) >= m.batchSize {
				m.dispatchBatch(batch)
				batch = nil
			}
		default:
			return batch
		}
	}
}

func (m *Manager) dispatchBatch(batch []Entry) {
	batchCopy := make([]Entry, len(batch))
	copy(batchCopy, batch)

	select {
	case m.batchChan <- batchCopy:
	default:
		m.publishBatch(context.Background(), batchCopy)
	}
}

func (m *Manager) runWorker(ctx context.Context, id int) {
	defer m.wg.Done()

	for {
		select {
		case batch, ok := <-m.batchChan:
			if !ok {
				return
			}
			m.publishBatch(ctx, batch)
		case <-ctx.Done():
			// Drain what is already queued before exiting.
			for {
				select {
				case batch, ok := <-m.batchChan:
					if !ok {
						return
					}
					m.publishBatch(context.Background(), batch)
				default:
					log.Printf("Audit worker %d exiting", id)
					return
				}
			}
		}
	}
}

func (m *Manager) publishBatch(ctx context.Context, batch []Entry) {
	payload, err := json.Marshal(batch)
	if err != nil {
		log.Printf("ERROR: failed to marshal audit batch: %v", err)
		return
	}

	key := []byte(uuid.NewString())
	if err := m.producer.SendMessage(ctx, m.topic, key, payload); err != nil {
		log.Printf("ERROR: failed to publish audit batch: %v", err)
		m.printBatch(batch)
	}
}

func (m *Manager) emergencyLog(entry Entry) {
	entryJSON, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		log.Printf("ERROR: failed to marshal emergency audit entry: %v", err)
		return
	}
	fmt.Printf("\n=== EMERGENCY AUDIT ===\n%s\n=== END AUDIT ===\n", entryJSON)
}

func (m *Manager) printBatch(batch []Entry) {
	fmt.Printf("\n=== AUDIT BATCH (UNPUBLISHED) ===\n")
	for _, entry := range batch {
		entryJSON, err := json.MarshalIndent(entry, "", "  ")
		if err != nil {
			fmt.Printf("ERROR: %v\n", err)
			continue
		}
		fmt.Println(string(entryJSON))
	}
	fmt.Println("=== END BATCH ===")
}
