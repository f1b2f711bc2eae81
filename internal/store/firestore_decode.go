package store

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Documents written by the web client carry form values as typed, so numeric
// fields may hold strings ("2") and flags may hold "true"/"on". These helpers
// read such a document without rejecting it.

func userFromData(id string, data map[string]any) UserProfile {
	user := UserProfile{
		Email:           asString(data["email"]),
		UID:             asString(data["uid"]),
		Name:            asString(data["name"]),
		Phone:           asString(data["phone"]),
		Age:             asInt(data["age"]),
		Weight:          asInt(data["weight"]),
		BloodGroup:      asString(data["bloodGroup"]),
		City:            asString(data["city"]),
		Agreement:       asBool(data["agreement"]),
		WillingToDonate: asBool(data["willingToDonate"]),
		CreatedAt:       asTime(data["createdAt"]),
	}
	if user.Email == "" {
		user.Email = id
	}
	return user
}

func requestFromData(id string, data map[string]any) BloodRequest {
	return BloodRequest{
		ID:            id,
		PatientName:   asString(data["patientName"]),
		BloodGroup:    asString(data["bloodGroup"]),
		Units:         asInt(data["units"]),
		HospitalName:  asString(data["hospitalName"]),
		City:          asString(data["city"]),
		Purpose:       asString(data["purpose"]),
		ContactPhone:  asString(data["contactPhone"]),
		LegalVerified: asBool(data["legalVerified"]),
		Status:        asString(data["status"]),
		CreatedAt:     asTime(data["createdAt"]),
		UserEmail:     asString(data["userEmail"]),
	}
}

// asInt accepts integers, doubles and numeric strings. Anything else is 0.
func asInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0
		}
		return int(math.Round(n))
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.Atoi(s); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return int(math.Round(f))
		}
	}
	return 0
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case int64:
		return strconv.FormatInt(s, 10)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return ""
}

func asBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "on", "yes", "1":
			return true
		}
	case int64:
		return b != 0
	}
	return false
}

func asTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}
