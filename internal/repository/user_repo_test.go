package repository

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"etsy_insights_v1/internal/model"
)

func setupRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.PasswordResetToken{}); err != nil {
		t.Fatalf("迁移测试表失败: %v", err)
	}
	return db
}

func seedUser(t *testing.T, repo UserRepository, name, email, role string) *model.User {
	t.Helper()
	u := &model.User{
		Name:     name,
		Email:    email,
		Password: "hashed",
		Role:     role,
		Status:   model.UserStatusActive,
	}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}
	return u
}

// ==================== 用户仓库 ====================

func TestUserRepository_GetNotFoundIsNilNil(t *testing.T) {
	repo := NewUserRepository(setupRepoTestDB(t))

	// 记录不存在按 (nil, nil) 返回，由上层决定业务错误
	user, err := repo.GetByID(context.Background(), 12345)
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if user != nil {
		t.Errorf("user = %+v, want nil", user)
	}

	user, err = repo.GetByEmail(context.Background(), "nobody@example.com")
	if err != nil || user != nil {
		t.Errorf("GetByEmail = (%+v, %v), want (nil, nil)", user, err)
	}
}

func TestUserRepository_SoftDelete(t *testing.T) {
	repo := NewUserRepository(setupRepoTestDB(t))
	ctx := context.Background()

	u := seedUser(t, repo, "Alice", "alice@example.com", model.UserRoleUser)

	if err := repo.Delete(ctx, u.ID); err != nil {
		t.Fatalf("删除失败: %v", err)
	}

	got, err := repo.GetByID(ctx, u.ID)
	if err != nil || got != nil {
		t.Errorf("软删除后 GetByID = (%+v, %v), want (nil, nil)", got, err)
	}

	// 默认查询排除软删除行；同邮箱再注册由唯一索引在插入时拦截
	exists, err := repo.ExistsByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("ExistsByEmail 失败: %v", err)
	}
	if exists {
		t.Error("默认查询不应命中软删除行")
	}
}

func TestUserRepository_List(t *testing.T) {
	repo := NewUserRepository(setupRepoTestDB(t))
	ctx := context.Background()

	seedUser(t, repo, "Admin", "admin@example.com", model.UserRoleAdmin)
	seedUser(t, repo, "Alice", "alice@example.com", model.UserRoleUser)
	seedUser(t, repo, "Bob", "bob@example.com", model.UserRoleUser)

	// 无条件全量
	users, total, err := repo.List(ctx, UserFilter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if total != 3 || len(users) != 3 {
		t.Errorf("total=%d len=%d, want 3/3", total, len(users))
	}

	// 按角色
	users, total, err = repo.List(ctx, UserFilter{Role: model.UserRoleUser, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if total != 2 {
		t.Errorf("按角色 total = %d, want 2", total)
	}

	// 按关键词匹配邮箱
	users, total, err = repo.List(ctx, UserFilter{Keyword: "bob@", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if total != 1 || users[0].Name != "Bob" {
		t.Errorf("按关键词 total=%d users=%+v", total, users)
	}

	// 分页
	users, total, err = repo.List(ctx, UserFilter{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if total != 3 || len(users) != 1 {
		t.Errorf("分页 total=%d len=%d, want 3/1", total, len(users))
	}
}

func TestUserRepository_UpdateLastLogin(t *testing.T) {
	repo := NewUserRepository(setupRepoTestDB(t))
	ctx := context.Background()

	u := seedUser(t, repo, "Alice", "alice@example.com", model.UserRoleUser)

	at := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	if err := repo.UpdateLastLogin(ctx, u.ID, at); err != nil {
		t.Fatalf("更新失败: %v", err)
	}

	got, err := repo.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if got.LastLoginAt == nil || !got.LastLoginAt.Equal(at) {
		t.Errorf("LastLoginAt = %v, want %v", got.LastLoginAt, at)
	}
}

// ==================== 重置令牌仓库 ====================

func TestResetTokenRepository_Lifecycle(t *testing.T) {
	db := setupRepoTestDB(t)
	userRepo := NewUserRepository(db)
	tokenRepo := NewResetTokenRepository(db)
	ctx := context.Background()

	u := seedUser(t, userRepo, "Alice", "alice@example.com", model.UserRoleUser)
	now := time.Now()

	token := &model.PasswordResetToken{
		UserID:    u.ID,
		Token:     "tok-alive",
		ExpiresAt: now.Add(time.Hour),
	}
	if err := tokenRepo.Create(ctx, token); err != nil {
		t.Fatalf("创建令牌失败: %v", err)
	}

	got, err := tokenRepo.GetByToken(ctx, "tok-alive")
	if err != nil || got == nil {
		t.Fatalf("GetByToken = (%+v, %v)", got, err)
	}
	if !got.Usable(now) {
		t.Error("未过期未使用的令牌应可用")
	}

	// 标记使用后不再可用
	if err := tokenRepo.MarkUsed(ctx, got.ID, now); err != nil {
		t.Fatalf("标记使用失败: %v", err)
	}
	got, _ = tokenRepo.GetByToken(ctx, "tok-alive")
	if got.Usable(now) {
		t.Error("已使用令牌不应可用")
	}

	// 未知令牌 (nil, nil)
	got, err = tokenRepo.GetByToken(ctx, "no-such-token")
	if err != nil || got != nil {
		t.Errorf("未知令牌 = (%+v, %v), want (nil, nil)", got, err)
	}
}

func TestResetTokenRepository_DeleteExpired(t *testing.T) {
	db := setupRepoTestDB(t)
	userRepo := NewUserRepository(db)
	tokenRepo := NewResetTokenRepository(db)
	ctx := context.Background()

	u := seedUser(t, userRepo, "Alice", "alice@example.com", model.UserRoleUser)
	now := time.Now()
	used := now.Add(-time.Minute)

	tokens := []*model.PasswordResetToken{
		{UserID: u.ID, Token: "tok-expired", ExpiresAt: now.Add(-time.Hour)},
		{UserID: u.ID, Token: "tok-used", ExpiresAt: now.Add(time.Hour), UsedAt: &used},
		{UserID: u.ID, Token: "tok-alive", ExpiresAt: now.Add(time.Hour)},
	}
	for _, tok := range tokens {
		if err := tokenRepo.Create(ctx, tok); err != nil {
			t.Fatalf("创建令牌失败: %v", err)
		}
	}

	// 过期 + 已使用的清掉，存活的保留
	n, err := tokenRepo.DeleteExpired(ctx, now)
	if err != nil {
		t.Fatalf("清理失败: %v", err)
	}
	if n != 2 {
		t.Errorf("清理行数 = %d, want 2", n)
	}

	got, err := tokenRepo.GetByToken(ctx, "tok-alive")
	if err != nil || got == nil {
		t.Errorf("存活令牌被误删: (%+v, %v)", got, err)
	}
}
