package app

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/factorline/receivables-registry/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	log "github.com/sirupsen/logrus"
)

func init() {
	log.SetOutput(io.Discard)
}

type mockDatabase struct {
	mock.Mock
}

func (m *mockDatabase) Connect() error      { return m.Called().Error(0) }
func (m *mockDatabase) SetupLockers() error { return m.Called().Error(0) }
func (m *mockDatabase) SetupIndexes() error { return m.Called().Error(0) }
func (m *mockDatabase) Disconnect() error   { return m.Called().Error(0) }

func (m *mockDatabase) InsertOne(collection string, data interface{}) error {
	return m.Called(collection, data).Error(0)
}

func (m *mockDatabase) FindOne(collection string, filter interface{}, result interface{}) error {
	return m.Called(collection, filter, result).Error(0)
}

func (m *mockDatabase) FindMany(collection string, filter interface{}, result interface{}) error {
	return m.Called(collection, filter, result).Error(0)
}

func (m *mockDatabase) UpdateOne(collection string, filter interface{}, update interface{}) error {
	return m.Called(collection, filter, update).Error(0)
}

func (m *mockDatabase) UpsertOne(collection string, filter interface{}, update interface{}) error {
	return m.Called(collection, filter, update).Error(0)
}

func (m *mockDatabase) XLock(resourceId string) (string, error) {
	args := m.Called(resourceId)
	return args.String(0), args.Error(1)
}

func (m *mockDatabase) SLock(resourceId string) (string, error) {
	args := m.Called(resourceId)
	return args.String(0), args.Error(1)
}

func (m *mockDatabase) Unlock(lockId string) error {
	return m.Called(lockId).Error(0)
}

func newTestHealthService() *HealthService {
	return &HealthService{
		stop:              make(chan bool, 1),
		registryAddress:   "0x1c49B45c0Ba1C98dee04Ac49b4E827b1eBd14983",
		authorizerAddress: "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
		hostname:          "hostname",
		paused:            func() bool { return false },
		interval:          time.Millisecond * 100,
	}
}

func TestPostHealth(t *testing.T) {

	t.Run("No Error", func(t *testing.T) {
		mockDB := new(mockDatabase)
		DB = mockDB

		x := newTestHealthService()
		mockDB.On("UpsertOne", models.CollectionHealthChecks, mock.Anything, mock.Anything).Return(nil)

		posted := x.PostHealth()

		assert.True(t, posted)
		mockDB.AssertExpectations(t)
	})

	t.Run("With Error", func(t *testing.T) {
		mockDB := new(mockDatabase)
		DB = mockDB

		x := newTestHealthService()
		mockDB.On("UpsertOne", models.CollectionHealthChecks, mock.Anything, mock.Anything).Return(errors.New("error"))

		posted := x.PostHealth()

		assert.False(t, posted)
		mockDB.AssertExpectations(t)
	})

	t.Run("Reports Paused State", func(t *testing.T) {
		mockDB := new(mockDatabase)
		DB = mockDB

		x := newTestHealthService()
		x.paused = func() bool { return true }

		var posted models.Health
		mockDB.On("UpsertOne", models.CollectionHealthChecks, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			update := args.Get(2).(map[string]interface{})
			posted = update["$set"].(models.Health)
		}).Return(nil)

		x.PostHealth()

		assert.True(t, posted.Paused)
		assert.Equal(t, x.registryAddress, posted.RegistryAddress)
		assert.Equal(t, x.authorizerAddress, posted.AuthorizerAddress)
		mockDB.AssertExpectations(t)
	})
}

func TestHealthStartStop(t *testing.T) {
	mockDB := new(mockDatabase)
	DB = mockDB

	x := newTestHealthService()
	mockDB.On("UpsertOne", models.CollectionHealthChecks, mock.Anything, mock.Anything).Return(nil)

	done := make(chan bool)
	go func() {
		x.Start()
		done <- true
	}()

	time.Sleep(time.Millisecond * 250)
	x.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("health service did not stop")
	}

	mockDB.AssertCalled(t, "UpsertOne", models.CollectionHealthChecks, mock.Anything, mock.Anything)
}

func TestNewHealthCheck(t *testing.T) {
	Config.HealthCheck.IntervalMillis = 30000

	service := NewHealthCheck("0x1c49B45c0Ba1C98dee04Ac49b4E827b1eBd14983", "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", func() bool { return false })

	assert.NotNil(t, service)
	health, ok := service.(*HealthService)
	assert.True(t, ok)
	assert.Equal(t, time.Duration(30000)*time.Millisecond, health.interval)
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", health.authorizerAddress)
	assert.NotEmpty(t, health.hostname)
}
