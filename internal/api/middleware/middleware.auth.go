package middleware

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"

	authmodels "ovrsee/internal/api/auth/models"
	basehdl "ovrsee/internal/api/base/handler"
	basesvc "ovrsee/internal/api/base/service"
	"ovrsee/internal/common"
	"ovrsee/internal/global"
	"ovrsee/internal/logger"
	"ovrsee/internal/utility"
)

// AuthManager xác thực ID token Firebase và ánh xạ sang user trong database
type AuthManager struct {
	UserCRUD *basesvc.BaseServiceMongoImpl[authmodels.User]
}

var (
	authManagerInstance *AuthManager
	authManagerOnce     sync.Once
)

// GetAuthManager trả về instance duy nhất của AuthManager (singleton pattern)
func GetAuthManager() *AuthManager {
	authManagerOnce.Do(func() {
		var err error
		authManagerInstance, err = newAuthManager()
		if err != nil {
			panic(err)
		}
	})
	return authManagerInstance
}

// newAuthManager khởi tạo một instance mới của AuthManager
func newAuthManager() (*AuthManager, error) {
	usersCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Users)
	if !exist {
		return nil, fmt.Errorf("failed to get auth_users collection: %v", common.ErrNotFound)
	}
	return &AuthManager{
		UserCRUD: basesvc.NewBaseServiceMongo[authmodels.User](usersCol),
	}, nil
}

// AuthMiddleware xác thực request bằng Firebase ID token trong header Authorization.
// Token hợp lệ thì user và organization tương ứng được lưu vào context locals.
func AuthMiddleware() fiber.Handler {
	authManager := GetAuthManager()

	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"path":   c.Path(),
				"method": c.Method(),
			}).Warn("❌ [AUTH] Missing Authorization header")
			return basehdl.HandleErrorResponse(c, common.ErrTokenMissing)
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return basehdl.HandleErrorResponse(c, common.ErrTokenInvalid)
		}

		token, err := utility.VerifyIDToken(context.Background(), parts[1])
		if err != nil {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"path":  c.Path(),
				"error": err.Error(),
			}).Warn("❌ [AUTH] Firebase token verification failed")
			return basehdl.HandleErrorResponse(c, common.ErrTokenInvalid)
		}

		user, err := authManager.UserCRUD.FindOne(context.Background(), bson.M{"firebaseUid": token.UID}, nil)
		if err != nil {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"path": c.Path(),
				"uid":  token.UID,
			}).Warn("❌ [AUTH] User not found for Firebase UID")
			return basehdl.HandleErrorResponse(c, common.ErrTokenInvalid)
		}

		c.Locals("user_id", user.ID.Hex())
		c.Locals("user", user)
		if !user.OrganizationID.IsZero() {
			c.Locals("organization_id", user.OrganizationID.Hex())
		}

		return c.Next()
	}
}
