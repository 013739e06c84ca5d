// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes defines the request and response types for the
// enrollment service.
//
// The central type is PolicyRecord, the flat enrollment entry captured by
// the data-entry form. All business fields are strings on purpose: entries
// arrive from manual typing, voice dictation, or AI document extraction,
// and are stored exactly as captured. Validation is layered on top rather
// than baked into the types.
package datatypes

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/AleutianAI/PolicyDesk/pkg/validation"
)

// PolicyRecord is one customer enrollment entry.
//
// Tenure and CSEName are derived from (Partner, Product, PremiumAmount)
// through the plan catalog; the service recomputes them on every write, so
// clients may leave them empty.
type PolicyRecord struct {
	// ID is assigned by the server on create (uuid v4).
	ID string `json:"id"`

	PolicyNumber    string `json:"policy_number" validate:"required,max=32"`
	CustomerName    string `json:"customer_name" validate:"required,max=120"`
	Gender          string `json:"gender" validate:"omitempty,oneof=male female other"`
	DateOfBirth     string `json:"date_of_birth" validate:"omitempty,datelayout"`
	MobileNumber    string `json:"mobile_number" validate:"required,mobile"`
	AlternateNumber string `json:"alternate_number" validate:"omitempty,mobile"`
	Email           string `json:"email" validate:"omitempty,email"`
	Address         string `json:"address" validate:"omitempty,max=500"`
	City            string `json:"city" validate:"omitempty,max=80"`
	State           string `json:"state" validate:"omitempty,max=80"`
	Pincode         string `json:"pincode" validate:"omitempty,pincode"`
	PANNumber       string `json:"pan_number" validate:"omitempty,pan"`
	NationalID      string `json:"national_id" validate:"omitempty,max=32"`

	NomineeName     string `json:"nominee_name" validate:"omitempty,max=120"`
	NomineeRelation string `json:"nominee_relation" validate:"omitempty,max=40"`
	NomineeDOB      string `json:"nominee_dob" validate:"omitempty,datelayout"`

	Partner       string `json:"partner" validate:"required,max=80"`
	Product       string `json:"product" validate:"required,max=120"`
	PremiumAmount string `json:"premium_amount" validate:"required,max=16"`

	// Derived from the plan catalog.
	Tenure  string `json:"tenure"`
	CSEName string `json:"cse_name"`

	BranchCode      string `json:"branch_code" validate:"omitempty,max=16"`
	SourcingChannel string `json:"sourcing_channel" validate:"omitempty,max=40"`
	EnrollmentDate  string `json:"enrollment_date" validate:"omitempty,datelayout"`
	Remarks         string `json:"remarks" validate:"omitempty,max=1000"`

	// CreatedAt and UpdatedAt are Unix milliseconds, set by the server.
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// AutofillResult is the best-effort partial record returned by the
// document extraction call. Fields the model could not read are empty
// strings; nothing here is validated before it reaches the operator.
type AutofillResult struct {
	PolicyNumber    string `json:"policy_number"`
	CustomerName    string `json:"customer_name"`
	Gender          string `json:"gender"`
	DateOfBirth     string `json:"date_of_birth"`
	MobileNumber    string `json:"mobile_number"`
	AlternateNumber string `json:"alternate_number"`
	Email           string `json:"email"`
	Address         string `json:"address"`
	City            string `json:"city"`
	State           string `json:"state"`
	Pincode         string `json:"pincode"`
	PANNumber       string `json:"pan_number"`
	NationalID      string `json:"national_id"`
	NomineeName     string `json:"nominee_name"`
	NomineeRelation string `json:"nominee_relation"`
	NomineeDOB      string `json:"nominee_dob"`
	EnrollmentDate  string `json:"enrollment_date"`
}

// ImportRequest replaces the full record list in one shot. This mirrors
// the whole-list replace-on-save model of the original storage layer.
type ImportRequest struct {
	Records []PolicyRecord `json:"records" validate:"required,dive"`
}

var (
	recordValidate     *validator.Validate
	recordValidateOnce sync.Once
)

// recordValidator returns the shared validator with the custom rules
// registered. Registration failures are programming errors, so they panic
// at first use rather than being silently dropped.
func recordValidator() *validator.Validate {
	recordValidateOnce.Do(func() {
		v := validator.New()
		mustRegister(v, "mobile", func(fl validator.FieldLevel) bool {
			return validation.ValidateMobile(fl.Field().String()) == nil
		})
		mustRegister(v, "pincode", func(fl validator.FieldLevel) bool {
			return validation.ValidatePincode(fl.Field().String()) == nil
		})
		mustRegister(v, "pan", func(fl validator.FieldLevel) bool {
			return validation.ValidatePAN(fl.Field().String()) == nil
		})
		mustRegister(v, "datelayout", func(fl validator.FieldLevel) bool {
			return validation.ValidateDate(fl.Field().String()) == nil
		})
		recordValidate = v
	})
	return recordValidate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// Validate checks the record's field-level constraints. Call after
// binding and before any storage write. Cascade consistency (whether the
// premium exists for the product) is checked separately against the
// catalog.
func (r *PolicyRecord) Validate() error {
	if err := recordValidator().Struct(r); err != nil {
		return fmt.Errorf("record validation failed: %w", err)
	}
	return nil
}

// Validate checks every record in the import payload.
func (r *ImportRequest) Validate() error {
	for i := range r.Records {
		if err := r.Records[i].Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}

// Fields returns the record's business fields in export column order.
// Export adapters and the search pipeline both rely on this ordering.
func (r *PolicyRecord) Fields() []string {
	return []string{
		r.PolicyNumber, r.CustomerName, r.Gender, r.DateOfBirth,
		r.MobileNumber, r.AlternateNumber, r.Email, r.Address,
		r.City, r.State, r.Pincode, r.PANNumber, r.NationalID,
		r.NomineeName, r.NomineeRelation, r.NomineeDOB,
		r.Partner, r.Product, r.PremiumAmount, r.Tenure, r.CSEName,
		r.BranchCode, r.SourcingChannel, r.EnrollmentDate, r.Remarks,
	}
}

// FieldNames returns the column headers matching Fields().
func FieldNames() []string {
	return []string{
		"Policy Number", "Customer Name", "Gender", "Date of Birth",
		"Mobile Number", "Alternate Number", "Email", "Address",
		"City", "State", "Pincode", "PAN Number", "National ID",
		"Nominee Name", "Nominee Relation", "Nominee DOB",
		"Partner", "Product", "Premium Amount", "Tenure", "CSE Name",
		"Branch Code", "Sourcing Channel", "Enrollment Date", "Remarks",
	}
}
