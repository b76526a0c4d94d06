package compiler

// knownMessages maps well-known paths to their canned response text.
var knownMessages = map[string]string{
	"/login":   "Login successful",
	"/signup":  "Signup successful",
	"/signout": "Signout successful",
	"/user":    "User data",
	"/admin":   "Admin data",
	"/home":    "Welcome to Home Page",
	"/about":   "About us",
	"/news":    "Latest news",
	"/blogs":   "Blogs list",
}

// ResponseMessage returns the message an endpoint responds with. Known paths
// use the canned table; anything else is "<name> response", even when name
// is empty.
func ResponseMessage(path, name string) string {
	if msg, ok := knownMessages[path]; ok {
		return msg
	}
	return name + " response"
}
