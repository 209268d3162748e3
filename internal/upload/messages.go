package upload

// Reply keyboard tokens.
const (
	TokenYes = "Yes✅"
	TokenNo  = "No❌"
)

// Commands the dialog understands while active.
const (
	CommandCancel     = "/cancel"
	CommandFinishTags = "/finish_tags"
)

const (
	msgSendMedia     = "Send your meme"
	msgName          = "Name your meme"
	msgNameTooLong   = "❌ the name is too long"
	msgNameEmpty     = "❌ the name is empty"
	msgAskTags       = "Do you want to add tags that help to search it later?"
	msgCollectTags   = "Input tags one per message, " + CommandFinishTags + " to finish"
	msgTagTooLong    = "❌ the tag is too long"
	msgTagEmpty      = "❌ the tag is empty"
	msgTagAccepted   = "✅"
	msgTagsCollected = "Tags collected: "
	msgNoTags        = "No tags collected"
	msgAskPublic     = "Do you want to make this meme public?"
	msgChooseToken   = "Please answer " + TokenYes + " or " + TokenNo
	msgPublic        = "Your meme is public"
	msgPrivate       = "Your meme is private"
	msgUploaded      = "Meme uploaded"
	msgUploadFailed  = "Something failed, the meme was not saved"
	msgCancelled     = "Meme upload canceled"
	msgWrongCommand  = "Wrong command. Meme upload canceled"
)
