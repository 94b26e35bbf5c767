package domain

// Route paths the console itself knows about.
const (
	RouteLogin         = "/login"
	RouteForgot        = "/forgot"
	RouteOTP           = "/otp"
	RouteResetPassword = "/resetpassword"

	RouteHome          = "/"
	RouteMyAccount     = "/my-account"
	RouteNotifications = "/notifications"
)
