package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// ArtifactFields 提供模型名与远端坐标字段，供缓存解析日志复用。
func ArtifactFields(name, repo, file string) logrus.Fields {
	fields := logrus.Fields{
		"model": name,
	}
	if repo != "" {
		fields["repo"] = repo
	}
	if file != "" {
		fields["file"] = file
	}
	return fields
}
