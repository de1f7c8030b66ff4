package main

import (
	"log"

	"github.com/joho/godotenv"

	"drinkshop/internal/config"
	"drinkshop/internal/domain/model"
	"drinkshop/internal/handler"
	"drinkshop/internal/infra/db"
	"drinkshop/internal/infra/mail"
	infraRepo "drinkshop/internal/infra/repository"
	"drinkshop/internal/infra/storage"
	"drinkshop/internal/infra/translate"
	"drinkshop/internal/server"
	"drinkshop/internal/usecase"
)

func main() {
	// .envは無くてもよい（本番は環境変数をそのまま使う）
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.UnverifiedUser{},
		&model.PasswordResetToken{},
		&model.Session{},
		&model.Section{},
		&model.Drink{},
		&model.DrinkVariant{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.DeliveryInfo{},
		&model.DeliverySlot{},
		&model.Address{},
		&model.StoreAddress{},
		&model.AuditLog{},
	); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	sessionRepo := infraRepo.NewSessionGormRepository(gormDB)
	verificationRepo := infraRepo.NewVerificationGormRepository(gormDB)
	sectionRepo := infraRepo.NewSectionGormRepository(gormDB)
	drinkRepo := infraRepo.NewDrinkGormRepository(gormDB)
	variantRepo := infraRepo.NewVariantGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	deliveryRepo := infraRepo.NewDeliveryInfoGormRepository(gormDB)
	slotRepo := infraRepo.NewDeliverySlotGormRepository(gormDB)
	addressRepo := infraRepo.NewAddressGormRepository(gormDB)
	storeRepo := infraRepo.NewStoreAddressGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//外部コラボレータ
	var mailer mail.Mailer = mail.LogMailer{}
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	}

	objStorage, err := storage.NewS3Storage(storage.S3Config{
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		PublicURL: cfg.S3PublicURL,
		UseSSL:    cfg.S3UseSSL,
	})
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	var translator translate.Translator = translate.LocalTranslator{}
	if cfg.TranslateURL != "" {
		translator = translate.NewHTTPTranslator(cfg.TranslateURL)
	}

	//Usecase生成
	authUC := usecase.NewAuthUsecase(cfg, userRepo, sessionRepo, verificationRepo, txManager, mailer)
	cartUC := usecase.NewCartUsecase(txManager)
	orderUC := usecase.NewOrderUsecase(orderRepo, orderItemRepo, deliveryRepo, drinkRepo, txManager, mailer, cfg.DeliveryPrice)
	slotUC := usecase.NewSlotUsecase(slotRepo)
	addressUC := usecase.NewAddressUsecase(addressRepo, storeRepo, txManager)
	catalogUC := usecase.NewCatalogUsecase(sectionRepo, drinkRepo, variantRepo, txManager, objStorage, translator)
	adminUC := usecase.NewAdminUsecase(orderRepo, auditRepo, storeRepo, txManager)

	//Handler生成
	handlers := server.Handlers{
		Auth:    handler.NewAuthHandler(authUC, cfg),
		Cart:    handler.NewCartHandler(cartUC, cfg),
		Order:   handler.NewOrderHandler(orderUC, slotUC, cfg),
		Address: handler.NewAddressHandler(addressUC, cfg),
		Catalog: handler.NewCatalogHandler(catalogUC, cfg),
		Admin:   handler.NewAdminHandler(adminUC, slotUC, cfg),
	}

	//Server起動
	e := server.New(cfg, authUC, handlers)
	if err := server.Start(e, cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
