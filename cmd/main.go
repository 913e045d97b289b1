package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"etsy_insights_v1/internal/controller"
	"etsy_insights_v1/internal/middleware"
	"etsy_insights_v1/internal/model"
	"etsy_insights_v1/internal/repository"
	"etsy_insights_v1/internal/router"
	"etsy_insights_v1/internal/service"
	"etsy_insights_v1/internal/task"
	"etsy_insights_v1/pkg/database"
	"etsy_insights_v1/pkg/etsy"
)

func main() {
	// 0. 读取 .env (不存在则忽略，直接用环境变量)
	_ = godotenv.Load()

	// 1. 初始化数据库
	db := initDatabase()

	// 2. 初始化依赖
	deps := initDependencies(db)

	// 3. 种子管理员 + 启动定时任务
	seedAdmin(deps)
	initTasks(deps)

	// 4. 初始化路由
	r := router.SetupRouter(deps.Controllers)

	// 5. 启动服务
	startServer(r)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *router.Controllers
}

// Repositories 仓库集合
type Repositories struct {
	User       repository.UserRepository
	ResetToken repository.ResetTokenRepository
}

// Services 服务集合
type Services struct {
	User    *service.UserService
	Insight *service.InsightService
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase() *gorm.DB {
	dsn := getEnv("DATABASE_DSN",
		"host=localhost user=etsy_insights password=etsy_insights dbname=etsy_insights port=5432 sslmode=disable")

	return database.InitDB(dsn,
		&model.User{},
		&model.PasswordResetToken{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- JWT 配置 --------
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg := middleware.DefaultJWTConfig()
		cfg.SecretKey = secret
		middleware.SetJWTConfig(cfg)
	}

	// -------- Repo 层 --------
	repos := &Repositories{
		User:       repository.NewUserRepository(db),
		ResetToken: repository.NewResetTokenRepository(db),
	}

	// -------- Etsy 客户端 --------
	// API Key 缺失不在启动时阻断：分析接口会在请求时报配置错误
	apiKey := os.Getenv("ETSY_API_KEY")
	if apiKey == "" {
		log.Println("警告: 未配置 ETSY_API_KEY，Etsy 分析接口将不可用")
	}
	etsyClient := etsy.NewClient(apiKey)

	// -------- 业务服务 --------
	services := &Services{
		User:    service.NewUserService(repos.User, repos.ResetToken, service.LogMailer{}),
		Insight: service.NewInsightService(etsyClient),
	}

	// -------- Controller 层 --------
	controllers := &router.Controllers{
		User: controller.NewUserController(services.User),
		Etsy: controller.NewEtsyController(services.Insight),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
	}
}

// seedAdmin 用户表为空时创建默认管理员
func seedAdmin(deps *Dependencies) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := deps.Services.User.EnsureAdmin(ctx,
		getEnv("ADMIN_NAME", "Admin"),
		getEnv("ADMIN_EMAIL", "admin@etsyinsights.com"),
		getEnv("ADMIN_PASSWORD", "admin123"),
	)
	if err != nil {
		log.Printf("警告: 种子管理员创建失败: %v", err)
	}
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(deps *Dependencies) {
	cleanupTask := task.NewResetTokenCleanupTask(deps.Repos.ResetToken)
	cleanupTask.Start()

	log.Println("定时任务已启动")
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine) {
	port := getEnv("SERVER_PORT", "8080")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}

// ==================== 工具函数 ====================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
