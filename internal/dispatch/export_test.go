package dispatch

// Exported for tests.
var (
	BuildNotifyData  = buildNotifyData
	FormatDate       = formatDate
	PostcodeDistrict = postcodeDistrict
)
