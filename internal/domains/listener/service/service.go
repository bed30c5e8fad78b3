package service

import (
	"context"
	"fmt"
	"strings"

	"justhear/config"
	"justhear/infras/otel"
	"justhear/infras/s3"
	"justhear/internal/domains/listener/model"
	"justhear/internal/domains/listener/model/dto"
	"justhear/internal/domains/listener/repository"
	"justhear/shared"
	"justhear/shared/cache"
	"justhear/shared/constant"
	gDto "justhear/shared/dto"
	"justhear/shared/failure"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetListener    = "listener:get"
	cacheGetAllListener = "listener:gets"
	cacheCountListener  = "listener:count"
)

type Listener interface {
	Create(ctx context.Context, req dto.CreateListenerRequest) error
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetListenersResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.ListenerResponse, error)
	Update(ctx context.Context, req dto.UpdateListenerRequest, id string) error
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo  repository.Listener
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
	s3    s3.S3
}

func New(repo repository.Listener, cfg *config.Config, cache cache.RedisCache, otel otel.Otel, s3 s3.S3) Listener {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
		s3:    s3,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateListenerRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	exists, err := s.repo.Exist(ctx, gDto.And(gDto.Eq(model.TableName, model.FieldUserID, userID)))
	if err != nil {
		log.Error().Err(err).Msg("failed to check listener existence")

		return fmt.Errorf("failed to check listener existence: %w", err)
	}

	if exists {
		return failure.Conflict("listener profile already exists for this user")
	}

	avatarURL := constant.Empty
	var uploadedObjectName string
	if req.Avatar != nil {
		bucketName := s.cfg.External.S3.BucketName
		filename := uuid.NewString()

		// Get original extension
		parts := strings.Split(req.Avatar.Filename, ".")
		if len(parts) > 1 {
			filename = fmt.Sprintf("%s.%s", filename, parts[len(parts)-1])
		}

		url, err := s.s3.UploadFile(ctx, bucketName, model.EntityName, req.AvatarFile, req.Avatar, filename)
		if err != nil {
			log.Error().Err(err).Msg("failed to upload avatar to S3")

			return fmt.Errorf("failed to upload avatar: %w", err)
		}
		avatarURL = url
		uploadedObjectName = filename
	}

	if err = s.repo.Insert(ctx, req.ToModel(userID, s.cfg.Booking.DefaultCurrency, avatarURL)); err != nil {
		if uploadedObjectName != constant.Empty {
			bucketName := s.cfg.External.S3.BucketName
			_ = s.s3.DeleteFile(ctx, bucketName, model.EntityName, uploadedObjectName)
		}

		return err
	}

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllListener)
		shared.InvalidateCaches(c, s.cache, cacheCountListener)
	}()

	return nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetListenersResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllListener, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for listeners")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count listeners")

		return res, fmt.Errorf("failed to count listeners: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get listeners")

		return res, fmt.Errorf("failed to get listeners: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save listeners to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountListener, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for listener count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count listeners")

		return res, fmt.Errorf("failed to count listeners: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save listener count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.ListenerResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetListener, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for listener")

		return res, nil
	}

	listener, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get listener")

		return res, fmt.Errorf("failed to get listener: %w", err)
	}

	if listener.ID == constant.Empty {
		return res, failure.NotFound("listener not found") // nolint:wrapcheck
	}

	res.FromModel(listener)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save listener to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateListenerRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	current, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check listener existence")

		return err
	}

	if current.ID == constant.Empty {
		log.Error().Msg("listener not found")

		return failure.NotFound("listener not found")
	}

	if current.UserID != userID && role != constant.RoleAdmin && role != constant.RoleSuperAdmin {
		return failure.Forbidden("you are not allowed to modify this listener profile")
	}

	return s.updateInternal(ctx, req, current, userID, filter)
}

func (s *serviceImpl) updateInternal(ctx context.Context, req dto.UpdateListenerRequest, current model.Listener, userID string, filter gDto.FilterGroup) error {
	avatarURL := constant.Empty
	var uploadedObjectName string
	bucketName := s.cfg.External.S3.BucketName

	if req.Avatar != nil {
		filename := uuid.NewString()

		// Get original extension
		parts := strings.Split(req.Avatar.Filename, ".")
		if len(parts) > 1 {
			filename = fmt.Sprintf("%s.%s", filename, parts[len(parts)-1])
		}

		url, err := s.s3.UploadFile(ctx, bucketName, model.EntityName, req.AvatarFile, req.Avatar, filename)
		if err != nil {
			return fmt.Errorf("failed to upload avatar: %w", err)
		}
		avatarURL = url
		uploadedObjectName = filename
	}

	updatedFields := shared.TransformFields(req, userID)
	if avatarURL != constant.Empty {
		updatedFields[model.FieldAvatar] = avatarURL
	}

	if err := s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update listener")

		// Cleanup: delete newly uploaded avatar if DB update fails
		if uploadedObjectName != constant.Empty {
			_ = s.s3.DeleteFile(ctx, bucketName, model.EntityName, uploadedObjectName)
		}

		return fmt.Errorf("failed to update listener: %w", err)
	}

	// Delete old avatar if update succeeded and new avatar was uploaded
	if avatarURL != constant.Empty && current.Avatar != constant.Empty {
		oldObjectName := s.s3.GetObjectNameFromURL(bucketName, current.Avatar)
		if oldObjectName != constant.Empty {
			_ = s.s3.DeleteFile(ctx, bucketName, model.EntityName, oldObjectName)
		}
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetListener, current.ID)); err != nil {
			log.Error().Err(err).Msg("failed to delete listener cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllListener)
		shared.InvalidateCaches(c, s.cache, cacheCountListener)
	}()

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) error {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(nil)

	exist, err := s.repo.Exist(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if listener exists")

		return fmt.Errorf("failed to check if listener exists: %w", err)
	}

	if !exist {
		log.Error().Msg("listener not found")

		return failure.NotFound("listener not found") // nolint:wrapcheck
	}

	if err := s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to delete listener")

		return fmt.Errorf("failed to delete listener: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetListener, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete listener from cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllListener)
		shared.InvalidateCaches(c, s.cache, cacheCountListener)
	}()

	return nil
}
