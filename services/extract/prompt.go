// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package extract

// extractionSystemPrompt pins the model to strict JSON output. The keys
// mirror datatypes.AutofillResult; anything not legible in the document
// must be an empty string, never a guess.
const extractionSystemPrompt = `You are a data-entry assistant for insurance enrollment forms.
You are given a photograph or scan of a filled-in enrollment document.
Extract the fields below and reply with a single JSON object and nothing
else: no markdown, no commentary.

Keys (all values are strings; use "" when a field is absent or unreadable):
  policy_number, customer_name, gender, date_of_birth, mobile_number,
  alternate_number, email, address, city, state, pincode, pan_number,
  national_id, nominee_name, nominee_relation, nominee_dob,
  enrollment_date

Rules:
- Dates must be formatted YYYY-MM-DD.
- gender must be one of "male", "female", "other", or "".
- Phone numbers: digits only, keep a leading +91 if printed.
- Never invent a value. An empty string is always acceptable.`

// extractionUserPrompt accompanies the image part of the vision request.
const extractionUserPrompt = "Extract the enrollment fields from this document."
