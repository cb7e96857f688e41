// Package sanitizer provides input normalization for customer-facing
// booking data.
//
// All normalization functions are idempotent - applying them multiple
// times produces the same result. Functions handle invalid input
// gracefully, typically by returning empty strings rather than errors;
// rejection of bad input is the validator's job, not the sanitizer's.
//
// Normalization includes:
//   - Phone numbers: convert to E.164 format (+[country][number])
//   - Names and addresses: collapse whitespace, trim
//   - Emails: trim and lowercase
//   - Durations: clamp to the bookable range
package sanitizer
