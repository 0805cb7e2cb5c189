package registry

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrUnknownModel is returned for a name outside the fixed model set.
	ErrUnknownModel = errors.New("unknown model")
	// ErrArtifactMissing is returned when a model's backing file does not exist.
	ErrArtifactMissing = errors.New("model artifact missing")
	// ErrArtifactCorrupt is returned when a model's backing file cannot be decoded.
	ErrArtifactCorrupt = errors.New("model artifact corrupt")
	// ErrPreprocessorMissing is returned when a shared preprocessor file does not exist.
	ErrPreprocessorMissing = errors.New("preprocessor artifact missing")
	// ErrPreprocessorCorrupt is returned when a shared preprocessor file cannot be decoded.
	ErrPreprocessorCorrupt = errors.New("preprocessor artifact corrupt")
)

// modelFiles fixes the model set and its declaration order. The order is
// user-visible and must stay stable.
var modelFiles = []struct {
	Name string
	File string
}{
	{"Naive Bayes", "nb_model.gob"},
	{"K-Nearest Neighbors", "knn_model.gob"},
	{"Decision Tree", "dt_model.gob"},
	{"SVM", "svm_model.gob"},
	{"Random Forest", "rf_model.gob"},
	{"Voting Classifier", "voting_model.gob"},
	{"Classifier", "clf_model.gob"},
}

const (
	classifiersSubdir   = "classifiers"
	preprocessorsSubdir = "preprocessors"
	vectorizerFile      = "tfidf_vectorizer.gob"
	scalerFile          = "feature_scaler.gob"
)

// ModelInfo describes a model's backing artifact without loading it.
type ModelInfo struct {
	Name      string
	Path      string
	Exists    bool
	SizeBytes int64
}

// Registry loads and caches classifier artifacts and the two shared
// preprocessors. The preprocessors are loaded at construction; classifiers
// load lazily on first access and stay cached for the registry's lifetime.
// Safe for concurrent use after construction.
type Registry struct {
	dir    string
	logger *zap.Logger

	vectorizer *TermVectorizer
	scaler     *FeatureScaler

	mu    sync.Mutex
	cache map[string]Predictor
}

// New creates a registry rooted at dir and loads the shared preprocessors.
// Construction fails when either preprocessor is absent or unreadable, since
// no classification is possible without them.
func New(dir string, logger *zap.Logger) (*Registry, error) {
	r := &Registry{
		dir:    dir,
		logger: logger,
		cache:  make(map[string]Predictor),
	}

	preDir := filepath.Join(dir, preprocessorsSubdir)
	if err := loadArtifact(filepath.Join(preDir, vectorizerFile), &r.vectorizer, ErrPreprocessorMissing, ErrPreprocessorCorrupt); err != nil {
		return nil, err
	}
	if err := loadArtifact(filepath.Join(preDir, scalerFile), &r.scaler, ErrPreprocessorMissing, ErrPreprocessorCorrupt); err != nil {
		return nil, err
	}

	logger.Info("Model registry initialized",
		zap.String("dir", dir),
		zap.Int("vocabulary_size", r.vectorizer.Width()))

	return r, nil
}

// Vectorizer returns the shared term vectorizer.
func (r *Registry) Vectorizer() *TermVectorizer {
	return r.vectorizer
}

// Scaler returns the shared feature scaler.
func (r *Registry) Scaler() *FeatureScaler {
	return r.scaler
}

// LoadClassifier returns the named classifier, reading it from disk on first
// access and from the cache afterwards.
func (r *Registry) LoadClassifier(name string) (Predictor, error) {
	file, ok := modelFile(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}

	// First load per name is synchronized so concurrent callers do not
	// deserialize the same artifact twice.
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.cache[name]; ok {
		return p, nil
	}

	var predictor Predictor
	path := filepath.Join(r.dir, classifiersSubdir, file)
	if err := loadArtifact(path, &predictor, ErrArtifactMissing, ErrArtifactCorrupt); err != nil {
		return nil, err
	}

	r.cache[name] = predictor
	r.logger.Info("Loaded classifier artifact",
		zap.String("model", name),
		zap.String("path", path))

	return predictor, nil
}

// ListAvailableModels returns the fixed model set in declaration order.
func (r *Registry) ListAvailableModels() []string {
	names := make([]string, len(modelFiles))
	for i, m := range modelFiles {
		names[i] = m.Name
	}
	return names
}

// DescribeModel reports the named model's backing path and on-disk state
// without loading it.
func (r *Registry) DescribeModel(name string) (ModelInfo, error) {
	file, ok := modelFile(name)
	if !ok {
		return ModelInfo{}, fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}

	info := ModelInfo{
		Name: name,
		Path: filepath.Join(r.dir, classifiersSubdir, file),
	}
	if stat, err := os.Stat(info.Path); err == nil {
		info.Exists = true
		info.SizeBytes = stat.Size()
	}
	return info, nil
}

func modelFile(name string) (string, bool) {
	for _, m := range modelFiles {
		if m.Name == name {
			return m.File, true
		}
	}
	return "", false
}

// WriteArtifact gob-encodes an artifact to path, creating parent directories.
// Predictor values must be passed as a pointer to the interface so the
// concrete variant is recorded in the stream.
func WriteArtifact(path string, artifact interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create artifact file: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(artifact); err != nil {
		return fmt.Errorf("failed to encode artifact: %w", err)
	}
	return nil
}

// loadArtifact gob-decodes one artifact file into target, mapping failures
// to the given missing/corrupt sentinels.
func loadArtifact(path string, target interface{}, missing, corrupt error) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", missing, path)
		}
		return fmt.Errorf("%w: %s: %v", corrupt, path, err)
	}
	defer f.Close()

	if err := gob.NewDecoder(f).Decode(target); err != nil {
		return fmt.Errorf("%w: %s: %v", corrupt, path, err)
	}
	return nil
}
