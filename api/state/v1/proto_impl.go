// proto_impl.go - minimal proto.Message implementations so the hand-defined
// structs are accepted by the gRPC plumbing.
package statev1

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
)

var _ proto.Message = (*GetAccountRequest)(nil)

func (*GetAccountRequest) ProtoMessage() {}

func (x *GetAccountRequest) Reset() {
	*x = GetAccountRequest{}
}

func (x *GetAccountRequest) String() string {
	return fmt.Sprintf("GetAccountRequest{Address:%x}", x.Address)
}

func (*GetAccountRequest) ProtoReflect() protoreflect.Message {
	return nil
}

var _ proto.Message = (*GetAccountResponse)(nil)

func (*GetAccountResponse) ProtoMessage() {}

func (x *GetAccountResponse) Reset() {
	*x = GetAccountResponse{}
}

func (x *GetAccountResponse) String() string {
	return fmt.Sprintf("GetAccountResponse{Nonce:%d, IsContract:%v}", x.Nonce, x.IsContract)
}

func (*GetAccountResponse) ProtoReflect() protoreflect.Message {
	return nil
}

var _ proto.Message = (*GetChainInfoRequest)(nil)

func (*GetChainInfoRequest) ProtoMessage() {}

func (x *GetChainInfoRequest) Reset() {
	*x = GetChainInfoRequest{}
}

func (x *GetChainInfoRequest) String() string {
	return "GetChainInfoRequest"
}

func (*GetChainInfoRequest) ProtoReflect() protoreflect.Message {
	return nil
}

var _ proto.Message = (*GetChainInfoResponse)(nil)

func (*GetChainInfoResponse) ProtoMessage() {}

func (x *GetChainInfoResponse) Reset() {
	*x = GetChainInfoResponse{}
}

func (x *GetChainInfoResponse) String() string {
	return fmt.Sprintf("GetChainInfoResponse{ChainId:%d}", x.ChainId)
}

func (*GetChainInfoResponse) ProtoReflect() protoreflect.Message {
	return nil
}
