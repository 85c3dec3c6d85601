// Package mfasdk holds the request and response bodies of the enrollment API,
// shared by the server and its callers, and a Client for calling it.
//
// A typical enrollment from a web form backend:
//
//	client := mfasdk.NewClient("http://localhost:8080")
//
//	enrollment, err := client.StartEnrollment(ctx, accountID, "My Phone")
//	if err != nil {
//		return err
//	}
//	// show enrollment.QRImageURL and enrollment.Secret to the user
//
//	auth, err := client.ConfirmEnrollment(ctx, accountID, enrollment.EnrollmentID, code)
//	switch {
//	case errors.Is(err, mfasdk.ErrInvalidCode):
//		// ask for the latest code again, the enrollment is still open
//	case errors.Is(err, mfasdk.ErrInvalidState):
//		// expired or already finished, start over
//	}
//
// Errors returned by the server are *APIError values and match the
// predefined errors with errors.Is.
package mfasdk
