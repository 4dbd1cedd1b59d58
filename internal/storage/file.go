package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/storyloom/storyloom/pkg/chat"
	"github.com/storyloom/storyloom/pkg/world"
)

const (
	graphFileYAML   = "world_knowledge_graph.yaml"
	graphFileJSON   = "world_knowledge_graph.json"
	worldFile       = "dynamic_world_knowledge.json"
	historyFile     = "chat_history.json"
	documentPerm    = 0o644
	documentDirPerm = 0o755
)

// FileStorage persists the world documents as whole JSON/YAML files under a
// data directory. A single-writer mutex plus the document version counter
// protect the dynamic world against the load-mutate-overwrite race between
// concurrent turns.
type FileStorage struct {
	dataDir string
	logger  *slog.Logger
	mu      sync.Mutex
}

var _ Storage = (*FileStorage)(nil)

// NewFileStorage creates a file storage instance rooted at dataDir.
func NewFileStorage(dataDir string, logger *slog.Logger) *FileStorage {
	if dataDir == "" {
		dataDir = "./knowledge_base"
	}
	return &FileStorage{
		dataDir: dataDir,
		logger:  logger,
	}
}

// Ping verifies the data directory exists or can be created.
func (f *FileStorage) Ping(ctx context.Context) error {
	if err := os.MkdirAll(f.dataDir, documentDirPerm); err != nil {
		return fmt.Errorf("data directory unavailable: %w", err)
	}
	return nil
}

func (f *FileStorage) Close() error {
	return nil
}

func (f *FileStorage) LoadKnowledgeGraph(ctx context.Context) (*world.KnowledgeGraph, error) {
	yamlPath := filepath.Join(f.dataDir, graphFileYAML)
	if data, err := os.ReadFile(yamlPath); err == nil {
		var kg world.KnowledgeGraph
		if err := yaml.Unmarshal(data, &kg); err != nil {
			return nil, fmt.Errorf("failed to parse knowledge graph %s: %w", yamlPath, err)
		}
		return &kg, nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read knowledge graph: %w", err)
	}

	jsonPath := filepath.Join(f.dataDir, graphFileJSON)
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read knowledge graph: %w", err)
	}
	var kg world.KnowledgeGraph
	if err := json.Unmarshal(data, &kg); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge graph %s: %w", jsonPath, err)
	}
	return &kg, nil
}

func (f *FileStorage) LoadWorld(ctx context.Context) (*world.DynamicWorld, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loadWorldLocked()
}

func (f *FileStorage) loadWorldLocked() (*world.DynamicWorld, error) {
	path := filepath.Join(f.dataDir, worldFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read world document: %w", err)
	}

	var w world.DynamicWorld
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to parse world document: %w", err)
	}
	return &w, nil
}

func (f *FileStorage) SaveWorld(ctx context.Context, w *world.DynamicWorld) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.loadWorldLocked()
	if err != nil {
		return err
	}
	if current != nil && current.Version != w.Version {
		f.logger.Warn("Rejecting stale world save",
			"stored_version", current.Version,
			"save_version", w.Version)
		return ErrVersionConflict
	}
	w.Version++

	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal world document: %w", err)
	}
	return f.writeFile(worldFile, data)
}

func (f *FileStorage) DeleteWorld(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := filepath.Join(f.dataDir, worldFile)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete world document: %w", err)
	}
	return nil
}

func (f *FileStorage) LoadHistory(ctx context.Context) ([]chat.SessionRecord, error) {
	path := filepath.Join(f.dataDir, historyFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []chat.SessionRecord{}, nil
		}
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	var records []chat.SessionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		// A corrupt history file degrades to empty rather than
		// blocking every future turn.
		f.logger.Warn("Discarding unreadable history file", "path", path, "error", err)
		return []chat.SessionRecord{}, nil
	}
	return records, nil
}

func (f *FileStorage) UpsertSessionRecord(ctx context.Context, rec chat.SessionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.LoadHistory(ctx)
	if err != nil {
		return err
	}

	replaced := false
	for i := range records {
		if records[i].SessionID == rec.SessionID {
			records[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, rec)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	return f.writeFile(historyFile, data)
}

func (f *FileStorage) DeleteHistory(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := filepath.Join(f.dataDir, historyFile)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete history file: %w", err)
	}
	return nil
}

func (f *FileStorage) writeFile(name string, data []byte) error {
	if err := os.MkdirAll(f.dataDir, documentDirPerm); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	path := filepath.Join(f.dataDir, name)
	if err := os.WriteFile(path, data, documentPerm); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
