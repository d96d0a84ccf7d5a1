package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

var testInput = ProfileInput{
	Age: 30, Gender: "male", HeightCM: 180, WeightKG: 80,
	ActivityLevel: "moderate", FitnessGoal: "lose_weight",
}

func TestHTTPMLServicePredictSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req predictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.ActivityLevel != "moderate" || req.Age != 30 {
			t.Errorf("unexpected request payload: %+v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success":        true,
			"daily_calories": 2300,
			"macronutrients": map[string]int{"protein": 170, "carbs": 230, "fats": 77},
			"bmi":            24.69,
			"bmr":            1805,
		})
	}))
	defer server.Close()

	service := NewHTTPMLService(server.URL, time.Second)
	result, err := service.Predict(context.Background(), testInput)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if result.DailyCalories != 2300 || result.Macros.Protein != 170 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Recommendations == nil {
		t.Fatalf("expected non-nil recommendations slice")
	}
}

func TestHTTPMLServicePredictUnsuccessfulPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false})
	}))
	defer server.Close()

	service := NewHTTPMLService(server.URL, time.Second)
	if _, err := service.Predict(context.Background(), testInput); err == nil {
		t.Fatalf("expected error for success=false payload")
	}
}

func TestHTTPMLServicePredictServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	service := NewHTTPMLService(server.URL, time.Second)
	if _, err := service.Predict(context.Background(), testInput); err == nil {
		t.Fatalf("expected error for 500 response")
	}
}

func TestHTTPMLServicePredictTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer server.Close()

	service := NewHTTPMLService(server.URL, 20*time.Millisecond)
	if _, err := service.Predict(context.Background(), testInput); err == nil {
		t.Fatalf("expected timeout error")
	}
}

func TestHTTPMLServicePredictUnconfigured(t *testing.T) {
	service := NewHTTPMLService("", time.Second)
	if _, err := service.Predict(context.Background(), testInput); err == nil {
		t.Fatalf("expected error when URL is not configured")
	}
}

func TestNormalizeServiceURL(t *testing.T) {
	cases := map[string]string{
		"":                          "",
		"  ":                        "",
		"http://ml.local:5000/":     "http://ml.local:5000",
		"https://ml.example.com///": "https://ml.example.com",
		"ml.example.com":            "https://ml.example.com",
	}
	for input, want := range cases {
		if got := normalizeServiceURL(input); got != want {
			t.Errorf("normalizeServiceURL(%q) = %q, want %q", input, got, want)
		}
	}
}
