package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// Location is the incident location payload.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

// IncidentPayload is the body posted to /api/incidents.
type IncidentPayload struct {
	VehicleID   string   `json:"vehicleId"`
	Type        string   `json:"type"`
	Severity    string   `json:"severity"`
	Description string   `json:"description"`
	Location    Location `json:"location"`
	VehicleData *struct {
		Speed float64 `json:"speed"`
	} `json:"vehicleData,omitempty"`
}

var incidentTypes = []string{
	"speeding", "harsh_braking", "rapid_acceleration", "accident", "fatigue",
	"distraction", "traffic_violation", "mechanical_failure", "weather_related", "other",
}

var severities = []string{"low", "medium", "high", "critical"}

var descriptions = map[string]string{
	"speeding":           "Exceeded posted speed limit",
	"harsh_braking":      "Sudden hard braking event detected",
	"rapid_acceleration": "Aggressive acceleration from standstill",
	"accident":           "Minor collision, no injuries reported",
	"fatigue":            "Driver reported drowsiness on long haul",
	"distraction":        "Phone use detected while driving",
	"traffic_violation":  "Ran a red light at intersection",
	"mechanical_failure": "Brake warning light came on mid-route",
	"weather_related":    "Skidded on wet road surface",
	"other":              "Unclassified safety event",
}

// Cities for realistic incident locations
var cities = []Location{
	{Latitude: 51.5074, Longitude: -0.1278},  // London
	{Latitude: 40.7128, Longitude: -74.0060}, // New York
	{Latitude: 40.4168, Longitude: -3.7038},  // Madrid
	{Latitude: 48.8566, Longitude: 2.3522},   // Paris
	{Latitude: 41.0082, Longitude: 28.9784},  // Istanbul
	{Latitude: 52.5200, Longitude: 13.4050},  // Berlin
	{Latitude: 35.6762, Longitude: 139.6503}, // Tokyo
	{Latitude: 43.6532, Longitude: -79.3832}, // Toronto
	{Latitude: 19.0760, Longitude: 72.8777},  // Mumbai
	{Latitude: 1.3521, Longitude: 103.8198},  // Singapore
}

func jitterLocation(base Location, meters float64) Location {
	latMetersPerDeg := 111320.0
	lonMetersPerDeg := 111320.0 * math.Cos(base.Latitude*math.Pi/180)
	dLat := (rand.Float64()*2 - 1) * (meters / latMetersPerDeg)
	dLon := (rand.Float64()*2 - 1) * (meters / lonMetersPerDeg)
	return Location{Latitude: base.Latitude + dLat, Longitude: base.Longitude + dLon}
}

func randomLocation() Location {
	base := cities[rand.Intn(len(cities))]
	return jitterLocation(base, 500)
}

var authToken string

func authorizedPost(url string, body *bytes.Buffer) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

// registerDriver registers a fresh driver account and captures its token.
func registerDriver(apiURL string, n int) error {
	payload := map[string]string{
		"name":          fmt.Sprintf("Sim Driver %d", n),
		"email":         fmt.Sprintf("sim-driver-%d-%d@example.com", n, time.Now().UnixNano()),
		"password":      "simulate123",
		"phone":         fmt.Sprintf("+1555%07d", rand.Intn(10000000)),
		"licenseNumber": fmt.Sprintf("SIM-%06d", rand.Intn(1000000)),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := authorizedPost(apiURL+"/auth/register", bytes.NewBuffer(data))
	if err != nil {
		return fmt.Errorf("failed to register driver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("driver registration failed with status: %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Token == "" {
		return fmt.Errorf("no token in registration response")
	}
	authToken = result.Token
	return nil
}

func randomIncident(vehicleID string) IncidentPayload {
	itype := incidentTypes[rand.Intn(len(incidentTypes))]
	payload := IncidentPayload{
		VehicleID:   vehicleID,
		Type:        itype,
		Severity:    severities[rand.Intn(len(severities))],
		Description: descriptions[itype],
		Location:    randomLocation(),
	}
	if itype == "speeding" || itype == "harsh_braking" {
		payload.VehicleData = &struct {
			Speed float64 `json:"speed"`
		}{Speed: 60 + rand.Float64()*80}
	}
	return payload
}

func sendIncident(apiURL string, payload IncidentPayload) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.WithError(err).Error("Failed to marshal incident")
		return
	}
	resp, err := authorizedPost(apiURL+"/incidents", bytes.NewBuffer(data))
	if err != nil {
		log.WithError(err).Error("Failed to send incident")
		return
	}
	defer resp.Body.Close()
	log.WithFields(log.Fields{
		"type":     payload.Type,
		"severity": payload.Severity,
		"status":   resp.Status,
	}).Info("Sent incident")
}

func main() {
	// A pre-issued token skips registration; useful against seeded databases.
	authToken = os.Getenv("SIM_AUTH_TOKEN")

	apiURL := os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:5000/api"
	}

	vehicleID := os.Getenv("SIM_VEHICLE_ID")
	if vehicleID == "" {
		log.Fatal("SIM_VEHICLE_ID is required (an existing vehicle id)")
	}

	interval := 5 * time.Second
	if v := os.Getenv("SIM_TICK_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			interval = time.Duration(n) * time.Second
		}
	}

	if authToken == "" {
		if err := registerDriver(apiURL, rand.Intn(1000)); err != nil {
			log.WithError(err).Fatal("Failed to register simulated driver")
		}
		log.Info("Registered simulated driver")
	}

	log.WithFields(log.Fields{
		"api_url":  apiURL,
		"interval": interval,
	}).Info("Starting incident simulation")

	tick := time.NewTicker(interval)
	defer tick.Stop()
	for range tick.C {
		sendIncident(apiURL, randomIncident(vehicleID))
	}
}
