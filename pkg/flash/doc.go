// Package flash stores one-shot user notifications in a signed cookie.
//
// Auth failures follow the post-redirect-get pattern: the form handler
// records a message, redirects, and the next page render pops and shows
// it. The cookie is HMAC-signed so the browser cannot forge or alter
// messages; a tampered cookie simply reads as empty.
//
//	stack, err := flash.New(os.Getenv("FLASH_SECRET"))
//	if err != nil {
//	    return err
//	}
//
//	// In the form handler:
//	stack.Add(w, r, flash.Error("Invalid credentials"))
//	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
//
//	// In the page handler:
//	for _, msg := range stack.Pop(w, r) {
//	    render(msg.Level, msg.Text)
//	}
package flash
