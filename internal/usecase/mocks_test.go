package usecase

import (
	"context"
	"encoding/base64"
	"sync"

	"github.com/platelens/backend/internal/domain"
)

// pngHeader is enough for content sniffing to report image/png
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

var testImageBase64 = base64.StdEncoding.EncodeToString(pngHeader)

// MockCompositionClient is a mock implementation of domain.CompositionClient
type MockCompositionClient struct {
	products      map[string]*domain.CompositionProduct
	barcodeError  error
	searchResults []domain.CompositionProduct
	searchError   error

	barcodeCalls int
	searchCalls  int
	lastQuery    string
}

func NewMockCompositionClient() *MockCompositionClient {
	return &MockCompositionClient{products: make(map[string]*domain.CompositionProduct)}
}

func (m *MockCompositionClient) GetProductByBarcode(ctx context.Context, barcode string) (*domain.CompositionProduct, error) {
	m.barcodeCalls++
	if m.barcodeError != nil {
		return nil, m.barcodeError
	}
	product, ok := m.products[barcode]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return product, nil
}

func (m *MockCompositionClient) SearchProducts(ctx context.Context, query string) ([]domain.CompositionProduct, error) {
	m.searchCalls++
	m.lastQuery = query
	if m.searchError != nil {
		return nil, m.searchError
	}
	if len(m.searchResults) == 0 {
		return nil, domain.ErrProductNotFound
	}
	return m.searchResults, nil
}

// MockProductCache is a mock implementation of domain.ProductCache.
// A key mapped to nil is a cached miss.
type MockProductCache struct {
	data     map[string]*domain.CompositionProduct
	setError error
}

func NewMockProductCache() *MockProductCache {
	return &MockProductCache{data: make(map[string]*domain.CompositionProduct)}
}

func (m *MockProductCache) Get(ctx context.Context, key string) (*domain.CompositionProduct, error) {
	product, ok := m.data[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	return product, nil
}

func (m *MockProductCache) Set(ctx context.Context, key string, product *domain.CompositionProduct) error {
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = product
	return nil
}

func (m *MockProductCache) SetNotFound(ctx context.Context, key string) error {
	return m.Set(ctx, key, nil)
}

// MockMealEntryRepository is an in-memory domain.MealEntryRepository
type MockMealEntryRepository struct {
	mu          sync.Mutex
	entries     map[string]*domain.MealEntry
	findError   error
	createError error
	updateError error
	updates     int
}

func NewMockMealEntryRepository() *MockMealEntryRepository {
	return &MockMealEntryRepository{entries: make(map[string]*domain.MealEntry)}
}

func (m *MockMealEntryRepository) GetByID(ctx context.Context, id string) (*domain.MealEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[id]
	if !ok {
		return nil, domain.ErrEntryNotFound
	}
	clone := *entry
	clone.FoodItems = append([]domain.FoodItem(nil), entry.FoodItems...)
	return &clone, nil
}

func (m *MockMealEntryRepository) FindAggregate(ctx context.Context, key domain.MealKey) (*domain.MealEntry, error) {
	if m.findError != nil {
		return nil, m.findError
	}
	m.mu.Lock()
	var found string
	for id, entry := range m.entries {
		if entry.UserID == key.UserID && entry.MealType == key.MealType &&
			entry.LoggedDate == key.LoggedDate && entry.AnalysisStatus == domain.StatusCompleted {
			found = id
			break
		}
	}
	m.mu.Unlock()
	if found == "" {
		return nil, domain.ErrEntryNotFound
	}
	return m.GetByID(ctx, found)
}

func (m *MockMealEntryRepository) Create(ctx context.Context, entry *domain.MealEntry) error {
	if m.createError != nil {
		return m.createError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *entry
	m.entries[entry.ID] = &clone
	return nil
}

func (m *MockMealEntryRepository) Update(ctx context.Context, entry *domain.MealEntry) error {
	if m.updateError != nil {
		return m.updateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[entry.ID]; !ok {
		return domain.ErrEntryNotFound
	}
	clone := *entry
	m.entries[entry.ID] = &clone
	m.updates++
	return nil
}

// MockProgressSink records every checkpoint it receives
type MockProgressSink struct {
	mu          sync.Mutex
	entryIDs    []string
	checkpoints []domain.ProgressCheckpoint
	err         error
}

func (m *MockProgressSink) Report(ctx context.Context, entryID string, checkpoint domain.ProgressCheckpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entryIDs = append(m.entryIDs, entryID)
	m.checkpoints = append(m.checkpoints, checkpoint)
	return m.err
}

func (m *MockProgressSink) statuses() []domain.AnalysisStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.AnalysisStatus, 0, len(m.checkpoints))
	for _, cp := range m.checkpoints {
		out = append(out, cp.Status)
	}
	return out
}

// MockImageStorage is a mock implementation of domain.ImageStorage
type MockImageStorage struct {
	url       string
	err       error
	calls     int
	lastUser  string
	lastImage *domain.ImagePayload
}

func (m *MockImageStorage) Upload(ctx context.Context, userID string, image *domain.ImagePayload) (string, error) {
	m.calls++
	m.lastUser = userID
	m.lastImage = image
	if m.err != nil {
		return "", m.err
	}
	return m.url, nil
}

// MockClassifier is a mock implementation of domain.FoodClassifier.
// build is called per request so callers never share item slices.
type MockClassifier struct {
	build     func() *domain.FoodAnalysis
	err       error
	panicWith interface{}
	calls     int
	lastInput domain.ClassificationInput
}

func (m *MockClassifier) Classify(ctx context.Context, input domain.ClassificationInput) (*domain.FoodAnalysis, error) {
	m.calls++
	m.lastInput = input
	if m.panicWith != nil {
		panic(m.panicWith)
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.build(), nil
}

// MockVisionModel is a mock implementation of domain.VisionModel
type MockVisionModel struct {
	response   string
	err        error
	lastPrompt string
	lastImage  string
}

func (m *MockVisionModel) Complete(ctx context.Context, prompt, imageURL string) (string, error) {
	m.lastPrompt = prompt
	m.lastImage = imageURL
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}
