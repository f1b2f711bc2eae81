package store

import "time"

const (
	// StatusActive marks a request that appears in the general feed.
	StatusActive = "active"
	// StatusClosed is reserved for fulfilled requests.
	StatusClosed = "closed"

	usersCollection    = "users"
	requestsCollection = "requests"
)

// BloodGroups lists the accepted ABO/Rh groups in display order.
var BloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// Cities lists the Kerala districts offered by the registration and request forms.
var Cities = []string{
	"Thiruvananthapuram",
	"Kollam",
	"Pathanamthitta",
	"Alappuzha",
	"Kottayam",
	"Idukki",
	"Ernakulam",
	"Thrissur",
	"Palakkad",
	"Malappuram",
	"Kozhikode",
	"Wayanad",
	"Kannur",
	"Kasaragod",
}

// cityAliases maps common city names onto their district.
var cityAliases = map[string]string{
	"Kochi":  "Ernakulam",
	"Cochin": "Ernakulam",
}

// UserProfile is a registered user, keyed by email address.
type UserProfile struct {
	Email           string    `json:"email" firestore:"email"`
	UID             string    `json:"-" firestore:"uid"`
	Name            string    `json:"name" firestore:"name"`
	Phone           string    `json:"phone" firestore:"phone"`
	Age             int       `json:"age" firestore:"age"`
	Weight          int       `json:"weight" firestore:"weight"`
	BloodGroup      string    `json:"blood_group" firestore:"bloodGroup"`
	City            string    `json:"city" firestore:"city"`
	Agreement       bool      `json:"agreement" firestore:"agreement"`
	WillingToDonate bool      `json:"willing_to_donate" firestore:"willingToDonate"`
	CreatedAt       time.Time `json:"created_at" firestore:"createdAt"`
}

// RequestPayload holds the user-editable fields of a blood request.
type RequestPayload struct {
	PatientName   string `json:"patient_name" validate:"required"`
	BloodGroup    string `json:"blood_group" validate:"required,bloodgroup"`
	Units         int    `json:"units" validate:"gte=1"`
	HospitalName  string `json:"hospital_name" validate:"required"`
	City          string `json:"city" validate:"required,city"`
	Purpose       string `json:"purpose"`
	ContactPhone  string `json:"contact_phone" validate:"required"`
	LegalVerified bool   `json:"legal_verified" validate:"eq=true"`
}

// BloodRequest is a stored request for blood owned by exactly one user.
type BloodRequest struct {
	ID            string    `json:"id" firestore:"-"`
	PatientName   string    `json:"patient_name" firestore:"patientName"`
	BloodGroup    string    `json:"blood_group" firestore:"bloodGroup"`
	Units         int       `json:"units" firestore:"units"`
	HospitalName  string    `json:"hospital_name" firestore:"hospitalName"`
	City          string    `json:"city" firestore:"city"`
	Purpose       string    `json:"purpose" firestore:"purpose"`
	ContactPhone  string    `json:"contact_phone" firestore:"contactPhone"`
	LegalVerified bool      `json:"legal_verified" firestore:"legalVerified"`
	Status        string    `json:"status" firestore:"status"`
	CreatedAt     time.Time `json:"created_at" firestore:"createdAt"`
	UserEmail     string    `json:"user_email" firestore:"userEmail"`
}

// Payload returns the editable fields of the request.
func (r BloodRequest) Payload() RequestPayload {
	return RequestPayload{
		PatientName:   r.PatientName,
		BloodGroup:    r.BloodGroup,
		Units:         r.Units,
		HospitalName:  r.HospitalName,
		City:          r.City,
		Purpose:       r.Purpose,
		ContactPhone:  r.ContactPhone,
		LegalVerified: r.LegalVerified,
	}
}

// apply replaces every editable field; id, owner, status and creation time are untouched.
func (r *BloodRequest) apply(p RequestPayload) {
	r.PatientName = p.PatientName
	r.BloodGroup = p.BloodGroup
	r.Units = p.Units
	r.HospitalName = p.HospitalName
	r.City = p.City
	r.Purpose = p.Purpose
	r.ContactPhone = p.ContactPhone
	r.LegalVerified = p.LegalVerified
}

func newRequest(id string, p RequestPayload, ownerEmail string, now time.Time) BloodRequest {
	r := BloodRequest{
		ID:        id,
		Status:    StatusActive,
		CreatedAt: now,
		UserEmail: ownerEmail,
	}
	r.apply(p)
	return r
}
