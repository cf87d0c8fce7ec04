package model

// WeightState はネットワーク重みの状態を表す
type WeightState int

const (
	// Uninitialized は重みが未初期化の状態
	Uninitialized WeightState = iota
	// Initialized は重みが乱数で初期化された状態
	Initialized
	// Loaded は保存済みの重みが読み込まれた状態
	Loaded
)

// BaseNetwork は全ての予測ネットワークの基底となる構造体。
// 設定ドキュメントの model.name / model.device をそのまま保持する。
type BaseNetwork struct {
	name   string
	device string
	state  WeightState
}

// NewBaseNetwork は新しいBaseNetworkを作成する
func NewBaseNetwork(name, device string) BaseNetwork {
	return BaseNetwork{name: name, device: device}
}

// Name は設定で選択されたアーキテクチャ名を返す
func (n *BaseNetwork) Name() string {
	return n.name
}

// Device は設定された実行ターゲットを返す
func (n *BaseNetwork) Device() string {
	return n.device
}

// WeightState は重みの状態を返す
func (n *BaseNetwork) WeightState() WeightState {
	return n.state
}

// SetInitialized は重みを初期化済み状態に設定する
func (n *BaseNetwork) SetInitialized() {
	n.state = Initialized
}

// SetLoaded は重みを読み込み済み状態に設定する
func (n *BaseNetwork) SetLoaded() {
	n.state = Loaded
}
