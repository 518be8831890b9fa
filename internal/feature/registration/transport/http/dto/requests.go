// Package dto はregistrationフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

// RegisterReq は POST /v1/register のリクエストボディを表します。
// 形式とパスワード強度の検証はユースケース側で行い、エラー種別をそのまま返します。
type RegisterReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ActivateReq は POST /v1/register/activate のリクエストボディを表します。
type ActivateReq struct {
	Code string `json:"code" binding:"required"`
}
