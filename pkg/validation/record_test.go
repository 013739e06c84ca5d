// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package validation

import "testing"

func TestValidateMobile(t *testing.T) {
	valid := []string{
		"9876543210",
		"+919876543210",
		"919876543210",
		"09876543210",
		"6000000000",
	}
	for _, number := range valid {
		if err := ValidateMobile(number); err != nil {
			t.Errorf("ValidateMobile(%q) = %v, want nil", number, err)
		}
	}

	invalid := []string{
		"",
		"12345",
		"5876543210",   // first digit below 6
		"98765432101",  // 11 digits, no prefix
		"98765 43210",  // whitespace
		"abcdefghij",   // letters
		"+19876543210", // wrong country prefix
	}
	for _, number := range invalid {
		if err := ValidateMobile(number); err == nil {
			t.Errorf("ValidateMobile(%q) = nil, want error", number)
		}
	}
}

func TestValidatePincode(t *testing.T) {
	valid := []string{"400001", "110001", "999999"}
	for _, pin := range valid {
		if err := ValidatePincode(pin); err != nil {
			t.Errorf("ValidatePincode(%q) = %v, want nil", pin, err)
		}
	}

	invalid := []string{"", "012345", "40001", "4000011", "40000a"}
	for _, pin := range invalid {
		if err := ValidatePincode(pin); err == nil {
			t.Errorf("ValidatePincode(%q) = nil, want error", pin)
		}
	}
}

func TestValidatePAN(t *testing.T) {
	if err := ValidatePAN("ABCDE1234F"); err != nil {
		t.Errorf("ValidatePAN(ABCDE1234F) = %v, want nil", err)
	}

	invalid := []string{"", "abcde1234f", "ABCDE12345", "ABCD1234FF", "ABCDE1234"}
	for _, pan := range invalid {
		if err := ValidatePAN(pan); err == nil {
			t.Errorf("ValidatePAN(%q) = nil, want error", pan)
		}
	}
}

func TestValidateDate(t *testing.T) {
	valid := []string{"1990-05-17", "2025-01-01"}
	for _, date := range valid {
		if err := ValidateDate(date); err != nil {
			t.Errorf("ValidateDate(%q) = %v, want nil", date, err)
		}
	}

	invalid := []string{"", "17-05-1990", "1990/05/17", "1990-13-01", "1990-02-30"}
	for _, date := range invalid {
		if err := ValidateDate(date); err == nil {
			t.Errorf("ValidateDate(%q) = nil, want error", date)
		}
	}
}
