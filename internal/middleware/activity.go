package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/mssola/user_agent"
	"github.com/sirupsen/logrus"

	"github.com/bookandgo/booking-backend/internal/utils"
)

// ActivityRecorder persists a user's last seen moment and device
type ActivityRecorder interface {
	TouchActivity(userID, ip, device string) error
}

// TrackActivity records the authenticated user's activity after each request.
// Runs after AuthMiddleware; requests without a user context pass through.
func TrackActivity(recorder ActivityRecorder, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		userCtx, exists := GetUserContext(c)
		if !exists {
			return
		}

		ua := user_agent.New(utils.GetUserAgent(c))
		browser, version := ua.Browser()
		device := fmt.Sprintf("%s %s on %s", browser, version, ua.OS())
		if ua.Mobile() {
			device = "mobile: " + device
		}

		if err := recorder.TouchActivity(userCtx.UserID.String(), utils.GetRealIP(c), device); err != nil {
			logger.WithError(err).WithField("user_id", userCtx.UserID).Warn("Failed to record user activity")
		}
	}
}
