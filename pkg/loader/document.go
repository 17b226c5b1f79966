package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// ErrRemoved is reported by a node whose script was removed before it loaded.
var ErrRemoved = errors.New("loader: script removed")

// ScriptRef is a script reference as it would appear in the document head.
type ScriptRef struct {
	Src   string `json:"src"`
	Async bool   `json:"async"`
	Defer bool   `json:"defer"`
}

// BuildScriptSrc parameterises base with the API key and library selector.
func BuildScriptSrc(base, key string, libraries []string) (string, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return "", errors.New("loader: script url is required")
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("loader: parse script url: %w", err)
	}
	q := u.Query()
	q.Set("key", key)
	if libs := joinLibraries(libraries); libs != "" {
		q.Set("libraries", libs)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func joinLibraries(libraries []string) string {
	out := make([]string, 0, len(libraries))
	for _, lib := range libraries {
		if lib = strings.TrimSpace(lib); lib != "" {
			out = append(out, lib)
		}
	}
	return strings.Join(out, ",")
}

// Node is an injected script. Done is closed once the load or error event has
// fired; Err is nil after a load event.
type Node interface {
	Src() string
	Done() <-chan struct{}
	Err() error
	Remove()
}

// Document receives injected scripts.
type Document interface {
	Inject(ref ScriptRef) (Node, error)
	Scripts() []ScriptRef
}

// Prober performs the network load of an injected script.
type Prober interface {
	Probe(ctx context.Context, src string) error
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context, src string) error

func (f ProberFunc) Probe(ctx context.Context, src string) error {
	return f(ctx, src)
}

// HTTPProber loads a script with a GET request. Any 2xx response is a load
// event; everything else is an error event.
type HTTPProber struct {
	Client *http.Client
}

func (p HTTPProber) Probe(ctx context.Context, src string) error {
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.New("loader: unexpected status " + resp.Status)
	}
	return nil
}

// Head is the process-wide document head. Injecting a src that is already
// present returns the existing node, so a capability is never injected twice.
type Head struct {
	mu     sync.Mutex
	prober Prober
	nodes  []*scriptNode
}

var _ Document = (*Head)(nil)

// NewHead builds a Head that loads scripts with prober. A nil prober treats
// every injected script as loaded immediately, which suits deployments where
// only the browser fetches the script.
func NewHead(prober Prober) *Head {
	return &Head{prober: prober}
}

func (h *Head) Inject(ref ScriptRef) (Node, error) {
	if h == nil {
		return nil, errors.New("loader: head is nil")
	}
	ref.Src = strings.TrimSpace(ref.Src)
	if ref.Src == "" {
		return nil, errors.New("loader: script src is required")
	}

	h.mu.Lock()
	for _, existing := range h.nodes {
		if existing.ref.Src == ref.Src {
			h.mu.Unlock()
			return existing, nil
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	node := &scriptNode{
		ref:    ref,
		head:   h,
		done:   make(chan struct{}),
		cancel: cancel,
	}
	h.nodes = append(h.nodes, node)
	prober := h.prober
	h.mu.Unlock()

	if prober == nil {
		cancel()
		node.finish(nil)
		return node, nil
	}
	go func() {
		defer cancel()
		node.finish(prober.Probe(ctx, ref.Src))
	}()
	return node, nil
}

// Scripts returns the injected script references in injection order.
func (h *Head) Scripts() []ScriptRef {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.nodes) == 0 {
		return nil
	}
	out := make([]ScriptRef, 0, len(h.nodes))
	for _, node := range h.nodes {
		out = append(out, node.ref)
	}
	return out
}

// Len reports how many scripts are currently injected.
func (h *Head) Len() int {
	if h == nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.nodes)
}

func (h *Head) remove(target *scriptNode) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, node := range h.nodes {
		if node == target {
			h.nodes = append(h.nodes[:i], h.nodes[i+1:]...)
			return
		}
	}
}

type scriptNode struct {
	ref    ScriptRef
	head   *Head
	done   chan struct{}
	cancel context.CancelFunc

	once sync.Once
	mu   sync.Mutex
	err  error
}

func (n *scriptNode) Src() string { return n.ref.Src }

func (n *scriptNode) Done() <-chan struct{} { return n.done }

func (n *scriptNode) Err() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.err
}

func (n *scriptNode) Remove() {
	n.cancel()
	n.head.remove(n)
	n.finish(ErrRemoved)
}

func (n *scriptNode) finish(err error) {
	n.once.Do(func() {
		n.mu.Lock()
		n.err = err
		n.mu.Unlock()
		close(n.done)
	})
}
