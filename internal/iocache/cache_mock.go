package iocache

import (
	"time"

	"github.com/stretchr/testify/mock"

	"polyscan/internal/contract"
	"polyscan/schema"
)

// MockCacheManager is a mock implementation of CacheManager for testing.
type MockCacheManager struct {
	mock.Mock
}

var _ contract.CacheManager = &MockCacheManager{} // Compile-time check

// GetScanStore implements the CacheManager interface.
func (m *MockCacheManager) GetScanStore() contract.ScanStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.ScanStore)
	return store
}

// GetRunStore implements the CacheManager interface.
func (m *MockCacheManager) GetRunStore() contract.RunStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.RunStore)
	return store
}

// MockScanStore is a mock implementation of ScanStore for testing.
type MockScanStore struct {
	mock.Mock
}

var _ contract.ScanStore = &MockScanStore{} // Compile-time check

// Get implements the ScanStore interface.
func (m *MockScanStore) Get(key string) ([]byte, int, int64, error) {
	args := m.Called(key)
	return args.Get(0).([]byte), args.Int(1), args.Get(2).(int64), args.Error(3)
}

// Set implements the ScanStore interface.
func (m *MockScanStore) Set(key string, data []byte, version int, ts int64) error {
	args := m.Called(key, data, version, ts)
	return args.Error(0)
}

// Clear implements the ScanStore interface.
func (m *MockScanStore) Clear() error {
	args := m.Called()
	return args.Error(0)
}

// GetStatus implements the ScanStore interface.
func (m *MockScanStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// Close implements the ScanStore interface.
func (m *MockScanStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockRunStore is a mock implementation of RunStore for testing.
type MockRunStore struct {
	mock.Mock
}

var _ contract.RunStore = &MockRunStore{} // Compile-time check

// BeginRun implements the RunStore interface.
func (m *MockRunStore) BeginRun(root string, startTime time.Time, parallel bool) (int64, error) {
	args := m.Called(root, startTime, parallel)
	return args.Get(0).(int64), args.Error(1)
}

// EndRun implements the RunStore interface.
func (m *MockRunStore) EndRun(runID int64, endTime time.Time, success bool, ecosystems int) error {
	args := m.Called(runID, endTime, success, ecosystems)
	return args.Error(0)
}

// RecordResult implements the RunStore interface.
func (m *MockRunStore) RecordResult(runID int64, result *schema.BuildResult) error {
	args := m.Called(runID, result)
	return args.Error(0)
}

// ListRuns implements the RunStore interface.
func (m *MockRunStore) ListRuns(n int) ([]schema.RunRecord, []schema.RunResultRecord, error) {
	args := m.Called(n)
	runs, _ := args.Get(0).([]schema.RunRecord)
	results, _ := args.Get(1).([]schema.RunResultRecord)
	return runs, results, args.Error(2)
}

// Clear implements the RunStore interface.
func (m *MockRunStore) Clear() error {
	args := m.Called()
	return args.Error(0)
}

// GetStatus implements the RunStore interface.
func (m *MockRunStore) GetStatus() (schema.RunStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.RunStatus), args.Error(1)
}

// Close implements the RunStore interface.
func (m *MockRunStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
