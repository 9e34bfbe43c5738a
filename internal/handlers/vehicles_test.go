package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fleetops/driver-safety/internal/db"
	"github.com/fleetops/driver-safety/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestVehicleHandler_Create(t *testing.T) {
	t.Run("vehicle number is upper-cased", func(t *testing.T) {
		mockVehicles := new(MockVehicleCollection)
		mockUsers := new(MockUserCollection)
		handler := NewVehicleHandler(mockVehicles, mockUsers)

		mockVehicles.On("InsertVehicle", mock.Anything, mock.MatchedBy(func(v models.Vehicle) bool {
			return v.VehicleNumber == "ABC-123" && v.Status == models.VehicleStatusActive
		})).Return(&models.Vehicle{
			ID:            primitive.NewObjectID(),
			VehicleNumber: "ABC-123",
			Status:        models.VehicleStatusActive,
		}, nil)

		req := postJSON(t, "/api/vehicles", map[string]interface{}{
			"vehicleNumber": " abc-123 ",
			"make":          "Ford",
			"model":         "Transit",
			"year":          2022,
			"fuelType":      "diesel",
		})
		w := httptest.NewRecorder()
		handler.Create(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		mockVehicles.AssertExpectations(t)
	})

	t.Run("duplicate vehicle number", func(t *testing.T) {
		mockVehicles := new(MockVehicleCollection)
		handler := NewVehicleHandler(mockVehicles, new(MockUserCollection))

		mockVehicles.On("InsertVehicle", mock.Anything, mock.Anything).
			Return(nil, db.ErrDuplicateVehicleNumber)

		req := postJSON(t, "/api/vehicles", map[string]interface{}{
			"vehicleNumber": "ABC-123",
			"make":          "Ford",
			"model":         "Transit",
			"year":          2022,
			"fuelType":      "diesel",
		})
		w := httptest.NewRecorder()
		handler.Create(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Vehicle number already exists")
	})

	t.Run("year bounds and fuel type are validated", func(t *testing.T) {
		mockVehicles := new(MockVehicleCollection)
		handler := NewVehicleHandler(mockVehicles, new(MockUserCollection))

		req := postJSON(t, "/api/vehicles", map[string]interface{}{
			"vehicleNumber": "XYZ-9",
			"make":          "Ford",
			"model":         "Transit",
			"year":          time.Now().Year() + 2,
			"fuelType":      "plutonium",
		})
		w := httptest.NewRecorder()
		handler.Create(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp struct {
			Errors []FieldError `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		fields := map[string]bool{}
		for _, fe := range resp.Errors {
			fields[fe.Field] = true
		}
		assert.True(t, fields["year"])
		assert.True(t, fields["fuelType"])
		mockVehicles.AssertNotCalled(t, "InsertVehicle", mock.Anything, mock.Anything)
	})
}

func TestVehicleHandler_Get(t *testing.T) {
	t.Run("joins the assigned driver", func(t *testing.T) {
		mockVehicles := new(MockVehicleCollection)
		mockUsers := new(MockUserCollection)
		handler := NewVehicleHandler(mockVehicles, mockUsers)

		driverID := primitive.NewObjectID()
		vehicle := &models.Vehicle{
			ID:            primitive.NewObjectID(),
			VehicleNumber: "ABC-123",
			DriverID:      &driverID,
		}
		mockVehicles.On("FindVehicleByID", mock.Anything, vehicle.ID.Hex()).Return(vehicle, nil)
		mockUsers.On("FindUserRefs", mock.Anything, []primitive.ObjectID{driverID}).
			Return(map[primitive.ObjectID]models.UserRef{
				driverID: {ID: driverID, Name: "Jane Doe", Email: "jane@example.com"},
			}, nil)

		req := withChiParam(httptest.NewRequest("GET", "/api/vehicles/"+vehicle.ID.Hex(), nil), "id", vehicle.ID.Hex())
		w := httptest.NewRecorder()
		handler.Get(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Vehicle models.Vehicle `json:"vehicle"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Vehicle.Driver)
		assert.Equal(t, "Jane Doe", resp.Vehicle.Driver.Name)
	})

	t.Run("not found", func(t *testing.T) {
		mockVehicles := new(MockVehicleCollection)
		handler := NewVehicleHandler(mockVehicles, new(MockUserCollection))

		id := primitive.NewObjectID().Hex()
		mockVehicles.On("FindVehicleByID", mock.Anything, id).Return(nil, db.ErrNotFound)

		req := withChiParam(httptest.NewRequest("GET", "/api/vehicles/"+id, nil), "id", id)
		w := httptest.NewRecorder()
		handler.Get(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestVehicleHandler_Update(t *testing.T) {
	t.Run("clears driver assignment with empty driverId", func(t *testing.T) {
		mockVehicles := new(MockVehicleCollection)
		mockUsers := new(MockUserCollection)
		handler := NewVehicleHandler(mockVehicles, mockUsers)

		driverID := primitive.NewObjectID()
		vehicle := &models.Vehicle{
			ID:            primitive.NewObjectID(),
			VehicleNumber: "ABC-123",
			Make:          "Ford",
			Model:         "Transit",
			Year:          2022,
			FuelType:      models.FuelDiesel,
			Status:        models.VehicleStatusActive,
			DriverID:      &driverID,
		}
		mockVehicles.On("FindVehicleByID", mock.Anything, vehicle.ID.Hex()).Return(vehicle, nil)
		mockVehicles.On("UpdateVehicle", mock.Anything, vehicle.ID.Hex(), mock.MatchedBy(func(v models.Vehicle) bool {
			return v.DriverID == nil
		})).Return(nil)
		mockUsers.On("FindUserRefs", mock.Anything, mock.Anything).
			Return(map[primitive.ObjectID]models.UserRef{}, nil)

		body := map[string]interface{}{"driverId": ""}
		req := postJSON(t, "/api/vehicles/"+vehicle.ID.Hex(), body)
		req = withChiParam(req, "id", vehicle.ID.Hex())
		w := httptest.NewRecorder()
		handler.Update(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockVehicles.AssertExpectations(t)
	})
}
