package ircd

// Numeric reply codes. catboxd sends exactly the codes RFC 1459 defines for
// the commands it implements; see DESIGN.md for the handful (321-323,
// 352) that the distilled spec's code list omitted but that LIST and WHO
// cannot be implemented without.
const (
	RplWelcome  = "001"
	RplYourHost = "002"
	RplCreated  = "003"
	RplMyInfo   = "004"

	RplUModeIs = "221"

	RplLuserClient   = "251"
	RplLuserOp       = "252"
	RplLuserUnknown  = "253"
	RplLuserChannels = "254"
	RplLuserMe       = "255"

	RplAway    = "301"
	RplUnAway  = "305"
	RplNowAway = "306"

	RplWhoisUser     = "311"
	RplWhoisServer   = "312"
	RplWhoisOperator = "313"
	RplWhoisIdle     = "317"
	RplEndOfWhois    = "318"
	RplWhoisChannels = "319"

	RplListStart = "321"
	RplList      = "322"
	RplListEnd   = "323"

	RplChannelModeIs = "324"

	RplNoTopic = "331"
	RplTopic   = "332"

	RplInviting = "341"

	RplNamReply   = "353"
	RplEndOfNames = "366"

	RplWhoReply  = "352"
	RplEndOfWho  = "315"

	RplMotdStart = "375"
	RplMotd      = "372"
	RplEndOfMotd = "376"

	RplYoureOper = "381"

	ErrNoSuchNick    = "401"
	ErrNoSuchServer  = "402"
	ErrNoSuchChannel = "403"
	ErrCannotSendToChan = "404"
	ErrNoOrigin      = "409"
	ErrNoRecipient   = "411"
	ErrNoTextToSend  = "412"
	ErrUnknownCommand = "421"
	ErrNoNicknameGiven = "431"
	ErrErroneousNickname = "432"
	ErrNicknameInUse = "433"
	ErrUserNotInChannel = "441"
	ErrNotOnChannel  = "442"
	ErrNotRegistered = "451"
	ErrNeedMoreParams = "461"
	ErrAlreadyRegistered = "462"
	ErrPasswdMismatch = "464"
	ErrChannelIsFull = "471"
	ErrUnknownMode   = "472"
	ErrInviteOnlyChan = "473"
	ErrBadChannelKey = "475"
	ErrNoPrivileges  = "481"
	ErrChanOpPrivsNeeded = "482"
	ErrUModeUnknownFlag  = "501"
	ErrUsersDontMatch    = "502"
)
