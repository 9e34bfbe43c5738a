package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fleetops/driver-safety/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestReportsHandler_IncidentsByType(t *testing.T) {
	mockIncidents := new(MockIncidentCollection)
	handler := NewReportsHandler(mockIncidents, new(MockUserCollection), new(MockVehicleCollection))

	mockIncidents.On("CountByType", mock.Anything).Return([]models.TypeCount{
		{Type: models.IncidentSpeeding, Count: 12},
		{Type: models.IncidentAccident, Count: 3},
	}, nil)

	w := httptest.NewRecorder()
	handler.IncidentsByType(w, httptest.NewRequest("GET", "/api/reports/incidents-by-type", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []models.TypeCount `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, models.IncidentSpeeding, resp.Data[0].Type)
	assert.EqualValues(t, 12, resp.Data[0].Count)
}

func TestReportsHandler_DriverPerformance(t *testing.T) {
	mockUsers := new(MockUserCollection)
	handler := NewReportsHandler(new(MockIncidentCollection), mockUsers, new(MockVehicleCollection))

	mockUsers.On("DriverPerformance", mock.Anything).Return([]models.DriverPerformance{
		{DriverID: primitive.NewObjectID(), DriverName: "Jane", TotalIncidents: 10, CriticalIncidents: 2},
		{DriverID: primitive.NewObjectID(), DriverName: "Zed", TotalIncidents: 30, CriticalIncidents: 5},
	}, nil)

	w := httptest.NewRecorder()
	handler.DriverPerformance(w, httptest.NewRequest("GET", "/api/reports/driver-performance", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []models.DriverPerformance `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	// 100 - 5*10 - 15*2 = 20
	assert.EqualValues(t, 20, resp.Data[0].SafetyScore)
	// 100 - 5*30 - 15*5 floors at 0
	assert.EqualValues(t, 0, resp.Data[1].SafetyScore)
}

func TestReportsHandler_Dashboard(t *testing.T) {
	t.Run("combines six independent counts", func(t *testing.T) {
		mockIncidents := new(MockIncidentCollection)
		mockUsers := new(MockUserCollection)
		mockVehicles := new(MockVehicleCollection)
		handler := NewReportsHandler(mockIncidents, mockUsers, mockVehicles)

		mockUsers.On("CountDrivers", mock.Anything).Return(int64(8), nil)
		mockVehicles.On("CountVehicles", mock.Anything).Return(int64(5), nil)
		mockIncidents.On("CountIncidents", mock.Anything, bson.M{}).Return(int64(40), nil)
		mockIncidents.On("CountIncidents", mock.Anything, bson.M{"resolved": false}).Return(int64(15), nil)
		mockIncidents.On("CountIncidents", mock.Anything, bson.M{"resolved": true}).Return(int64(25), nil)
		mockIncidents.On("CountIncidents", mock.Anything, bson.M{"severity": models.SeverityCritical}).Return(int64(4), nil)

		w := httptest.NewRecorder()
		handler.Dashboard(w, httptest.NewRequest("GET", "/api/reports/dashboard", nil))

		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Stats models.DashboardStats `json:"stats"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, models.DashboardStats{
			TotalDrivers:      8,
			TotalVehicles:     5,
			TotalIncidents:    40,
			ActiveIncidents:   15,
			ResolvedIncidents: 25,
			CriticalIncidents: 4,
		}, resp.Stats)
	})

	t.Run("one failing count aborts the response", func(t *testing.T) {
		mockIncidents := new(MockIncidentCollection)
		mockUsers := new(MockUserCollection)
		mockVehicles := new(MockVehicleCollection)
		handler := NewReportsHandler(mockIncidents, mockUsers, mockVehicles)

		mockUsers.On("CountDrivers", mock.Anything).Return(int64(0), assert.AnError)
		mockVehicles.On("CountVehicles", mock.Anything).Return(int64(5), nil)
		mockIncidents.On("CountIncidents", mock.Anything, mock.Anything).Return(int64(0), nil)

		w := httptest.NewRecorder()
		handler.Dashboard(w, httptest.NewRequest("GET", "/api/reports/dashboard", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "Server error")
	})
}
