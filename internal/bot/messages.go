package bot

const (
	msgGreeting = "Hi! I keep your memes and send them anywhere through inline mode.\n" +
		"Use /add to upload a meme and /menu to browse yours."
	msgStartFailed   = "Something failed, please try /start again"
	msgNothingCancel = "Nothing to cancel"
	msgNoUpload      = "No upload in progress. Use /add"
	msgUseAdd        = "To upload a meme use /add first"
	msgUnknown       = "I don't know what to do with that. See /help"
	msgHelpHeader    = "Commands:"
	msgAdminOnly     = "This command is for the bot admin"
	msgLimited       = "Too many requests, slow down a little"
)
