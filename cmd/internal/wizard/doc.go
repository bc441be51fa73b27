// Package wizard drives invitation creation from guest details to a
// shareable flyer.
//
// A Wizard moves through three states: collecting_guest_data,
// selecting_design and generated. Generate mints a fresh token, derives the
// verification URL, attempts to persist the record and then renders the flyer
// with the final QR payload in a single call. A failed insert is logged and
// remembered so it can be retried; it never stops the flyer from being
// produced. A failed render keeps the wizard in selecting_design.
package wizard
