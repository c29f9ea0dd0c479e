package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/fastygo/taskdesk/domain"
)

type CommandHandler func(ctx context.Context, payload interface{}) (interface{}, error)
type QueryHandler func(ctx context.Context, params interface{}) (interface{}, error)

// Dispatcher routes named view intents to the stores.
type Dispatcher struct {
	cmdHandlers map[string]CommandHandler
	qryHandlers map[string]QueryHandler
	mu          sync.RWMutex
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		cmdHandlers: make(map[string]CommandHandler),
		qryHandlers: make(map[string]QueryHandler),
	}
}

func (d *Dispatcher) RegisterCommand(name string, handler CommandHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cmdHandlers[name] = handler
}

func (d *Dispatcher) RegisterQuery(name string, handler QueryHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.qryHandlers[name] = handler
}

func (d *Dispatcher) ExecuteCommand(ctx context.Context, name string, payload interface{}) (interface{}, error) {
	d.mu.RLock()
	handler, ok := d.cmdHandlers[name]
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("command handler %s not registered", name)
	}
	return handler(ctx, payload)
}

func (d *Dispatcher) ExecuteQuery(ctx context.Context, name string, params interface{}) (interface{}, error) {
	d.mu.RLock()
	handler, ok := d.qryHandlers[name]
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("query handler %s not registered", name)
	}
	return handler(ctx, params)
}

// Commands lists registered command names in lexical order.
func (d *Dispatcher) Commands() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.cmdHandlers))
	for name := range d.cmdHandlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Queries lists registered query names in lexical order.
func (d *Dispatcher) Queries() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.qryHandlers))
	for name := range d.qryHandlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Payload decodes an intent payload into T, failing with an INVALID domain error on mismatch.
func Payload[T any](name string, payload interface{}) (T, error) {
	switch v := payload.(type) {
	case T:
		return v, nil
	case *T:
		if v != nil {
			return *v, nil
		}
	}
	var zero T
	return zero, domain.NewError(domain.ErrCodeInvalid, fmt.Sprintf("%s: unexpected payload %T", name, payload))
}
