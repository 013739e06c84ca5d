// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation for enrollment form fields.
//
// These validators cover the identity-style fields that have a fixed
// surface format (phone numbers, postal codes, tax IDs, dates). They are
// used both directly and as custom rules registered with the
// go-playground validator in the datatypes package.
package validation

import (
	"fmt"
	"regexp"
	"time"
)

// mobilePattern matches a 10-digit subscriber number with an optional
// country prefix (+91, 91, 0).
var mobilePattern = regexp.MustCompile(`^(\+91|91|0)?[6-9][0-9]{9}$`)

// pincodePattern matches a 6-digit postal code that does not start with 0.
var pincodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)

// panPattern matches the ten-character permanent account number format:
// five letters, four digits, one letter.
var panPattern = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)

// DateLayout is the wire format for all date fields on a policy record.
const DateLayout = "2006-01-02"

// ValidateMobile validates a mobile number field.
//
// Valid numbers are 10 digits starting with 6-9, optionally prefixed with
// +91, 91, or 0. Returns an error describing the expected format.
func ValidateMobile(number string) error {
	if number == "" {
		return fmt.Errorf("mobile number cannot be empty")
	}
	if !mobilePattern.MatchString(number) {
		return fmt.Errorf("invalid mobile number %q (expected 10 digits, optional +91/91/0 prefix)", number)
	}
	return nil
}

// ValidatePincode validates a postal code field.
func ValidatePincode(pincode string) error {
	if pincode == "" {
		return fmt.Errorf("pincode cannot be empty")
	}
	if !pincodePattern.MatchString(pincode) {
		return fmt.Errorf("invalid pincode %q (expected 6 digits, first digit non-zero)", pincode)
	}
	return nil
}

// ValidatePAN validates a permanent account number.
//
// The input must already be uppercase; the form layer uppercases PAN
// input before it reaches validation.
func ValidatePAN(pan string) error {
	if pan == "" {
		return fmt.Errorf("PAN cannot be empty")
	}
	if !panPattern.MatchString(pan) {
		return fmt.Errorf("invalid PAN %q (expected AAAAA9999A)", pan)
	}
	return nil
}

// ValidateDate validates a date field against DateLayout.
func ValidateDate(date string) error {
	if date == "" {
		return fmt.Errorf("date cannot be empty")
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", date, err)
	}
	return nil
}
