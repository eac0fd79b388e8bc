package usecase

import (
	"context"
	"crypto/md5"
	"fmt"
	"time"

	"social-hub/domain/dto"
	"social-hub/domain/model"
	"social-hub/domain/repository"
	"social-hub/infrastructure/logger"
	"social-hub/infrastructure/utils"
)

type IUserUsecase interface {
	Login(ctx context.Context, req model.ReqLogin) dto.Res
	Register(ctx context.Context, req model.ReqRegister) dto.Res
}

type userUsecase struct {
	userRepository repository.IUser
	secretKey      string
}

func NewUserUsecase(userRepository repository.IUser, secretKey string) IUserUsecase {
	return &userUsecase{userRepository: userRepository, secretKey: secretKey}
}

func (u *userUsecase) Login(ctx context.Context, req model.ReqLogin) dto.Res {
	var res dto.Res
	res.ResponseCode = "401"
	res.ResponseMessage = "Unauthorized"

	user, err := u.userRepository.GetByUserName(ctx, req.UserName)
	if err != nil {
		logger.GetLogger().WithField("userName", req.UserName).Info("User not found")
		return res
	}
	hashed := fmt.Sprintf("%x", md5.Sum([]byte(req.Password)))
	if user.Password != hashed {
		return res
	}

	now := utils.GetCurrentTime()
	token, err := utils.GenerateToken(map[string]interface{}{
		"user_name": user.UserName,
		"iss":       fmt.Sprintf("%d", user.ID),
		"iat":       now.Unix(),
		"exp":       now.Add(24 * time.Hour).Unix(),
	}, u.secretKey)
	if err != nil {
		res.ResponseCode = "500"
		res.ResponseMessage = "Internal Server Error"
		return res
	}

	res.ResponseCode = "200"
	res.ResponseMessage = "Success"
	res.Data = map[string]interface{}{"accessToken": token}
	return res
}

func (u *userUsecase) Register(ctx context.Context, req model.ReqRegister) dto.Res {
	var res dto.Res
	res.ResponseCode = "400"
	res.ResponseMessage = "Bad Request"

	if req.UserName == "" || req.Password == "" {
		return res
	}
	if _, err := u.userRepository.GetByUserName(ctx, req.UserName); err == nil {
		res.ResponseMessage = "User already exists"
		return res
	}

	user := model.User{
		Name:     req.Name,
		UserName: req.UserName,
		Password: req.Password, // already hashed by the handler
	}
	if err := u.userRepository.CreateUser(ctx, user); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while creating user")
		res.ResponseCode = "500"
		res.ResponseMessage = "Internal Server Error"
		return res
	}

	res.ResponseCode = "200"
	res.ResponseMessage = "Success"
	return res
}
